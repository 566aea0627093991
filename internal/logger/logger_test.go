// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ostafen/pngkit/internal/oops"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, WarnLevel, ParseLevel("warn"))
	require.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	require.Equal(t, InfoLevel, ParseLevel("INFO"))
	require.Equal(t, InfoLevel, ParseLevel("verbose"))

	for _, l := range []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel} {
		require.Equal(t, l, ParseLevel(l.String()))
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WarnLevel)

	log.Debug("hidden")
	log.Infof("hidden %d", 1)
	require.Empty(t, buf.String())

	log.Warnf("skipping %s", "tEXt")
	require.Contains(t, buf.String(), "WRN")
	require.Contains(t, buf.String(), "skipping tEXt")

	buf.Reset()
	log.Error("boom")
	require.Contains(t, buf.String(), "ERR")
	require.Contains(t, buf.String(), "boom")
}

func TestLoggerErr(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, DebugLevel)

	log.Err(oops.New(errors.New("bad chunk"), "cannot decode"), "decode failed")
	require.Contains(t, buf.String(), "decode failed")
	require.Contains(t, buf.String(), "cannot decode: bad chunk")
	require.Contains(t, buf.String(), "TestLoggerErr")
}

func TestZerologShared(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, InfoLevel)

	log.Zerolog().Warn().Str("chunk", "zTXt").Msg("ignored")
	require.Contains(t, buf.String(), "chunk=zTXt")

	Nop().Error("nothing")
	Nop().Zerolog().Error().Msg("nothing")
}
