package credstore

const testRegistration = `{
  "installed": {
    "client_id": "client-123.apps.googleusercontent.com",
    "project_id": "nest-test",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "shh",
    "redirect_uris": ["http://localhost"]
  }
}`
