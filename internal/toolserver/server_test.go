package toolserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDispatchesStatusRequestAndRespondsOnOneLine(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	in := strings.NewReader(`{"version":"1.0","id":1,"op":"status"}` + "\n")
	var out bytes.Buffer
	srv.reader = bufio.NewReader(in)
	srv.writer = &out

	err := srv.Run(context.Background())
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp))
	assert.Nil(t, resp.Error)
	assert.EqualValues(t, 1, resp.ID)
}

func TestRunReportsBadRequestForUnknownOp(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	in := strings.NewReader(`{"version":"1.0","id":"x","op":"frobnicate"}` + "\n")
	var out bytes.Buffer
	srv.reader = bufio.NewReader(in)
	srv.writer = &out

	err := srv.Run(context.Background())
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
}

func TestRunSkipsBlankLines(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	in := strings.NewReader("\n\n" + `{"version":"1.0","op":"status"}` + "\n")
	var out bytes.Buffer
	srv.reader = bufio.NewReader(in)
	srv.writer = &out

	err := srv.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}
