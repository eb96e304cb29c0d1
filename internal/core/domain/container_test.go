package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"running", StatusRunning},
		{"exited", StatusExited},
		{"", StatusUnknown},
		{"Running", StatusUnknown},
		{"EXITED", StatusUnknown},
		{" running", StatusUnknown},
		{"paused", StatusUnknown},
		{"restarting", StatusUnknown},
		{"\x00garbage", StatusUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatus(tt.in), "ParseStatus(%q)", tt.in)
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc123def456", ShortID("abc123def456789"))
	assert.Equal(t, "abc123def456", ShortID("abc123def456"))
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "", ShortID(""))
}

func TestContainerJSON(t *testing.T) {
	c := Container{ID: "abc123def456789", ShortID: "abc123def456", Name: "web", Status: StatusRunning}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc123def456789","short_id":"abc123def456","name":"web","status":"running"}`, string(data))
}

func TestSnapshotFind(t *testing.T) {
	s := &Snapshot{Containers: []Container{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}}

	c, ok := s.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "two", c.Name)

	_, ok = s.Find("z")
	assert.False(t, ok)

	var nilSnap *Snapshot
	_, ok = nilSnap.Find("a")
	assert.False(t, ok)
}

func TestErrors(t *testing.T) {
	cause := errors.New("refused")

	conn := &ConnectionError{Host: "unix:///var/run/docker.sock", Cause: cause}
	assert.Contains(t, conn.Error(), "unix:///var/run/docker.sock")
	assert.ErrorIs(t, conn, cause)
	assert.True(t, IsConnectionError(fmt.Errorf("wrapped: %w", conn)))

	cmd := &CommandError{Op: CommandStop, ID: "abc", Cause: conn}
	assert.Equal(t, "failed to stop container abc: cannot connect to container engine at unix:///var/run/docker.sock: refused", cmd.Error())
	assert.True(t, IsConnectionError(cmd))

	q := &QueryError{Cause: cause}
	assert.ErrorIs(t, q, cause)
	assert.False(t, IsConnectionError(q))
}
