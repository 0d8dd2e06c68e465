// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package system

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the CLI logger. Without verbose it discards everything;
// with verbose it writes development-style console lines to w.
func NewLogger(w io.Writer, verbose bool) *zap.SugaredLogger {
	if !verbose || w == nil {
		return zap.NewNop().Sugar()
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	encoderCfg.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zap.DebugLevel)
	return zap.New(core).Sugar()
}

// DeviceFields returns a variadic slice of key/value pairs suitable for passing
// to SugaredLogger.With or Infow/Debugw calls. If projectID is empty it will only
// include the "device" key; otherwise it includes both "device" and "project".
func DeviceFields(device, projectID string) []interface{} {
	if projectID == "" {
		return []interface{}{"device", device}
	}
	return []interface{}{"device", device, "project", projectID}
}
