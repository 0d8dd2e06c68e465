// Package client provides the Smart Device Management REST client used by
// nestctl. It lists and fetches devices, dispatches device commands and maps
// provider failures onto the errdefs taxonomy.
package client
