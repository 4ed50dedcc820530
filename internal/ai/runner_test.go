package ai

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	nebula_errors "nebula-chat/pkg/errors"
	"nebula-chat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The runner only needs an executable interpreter and a script path, so the
// tests drive it with sh instead of python.
func newShellRunner(t *testing.T, scripts map[string]string) *ProcessRunner {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755))
	}
	return NewProcessRunner("sh", dir, logger.NewNop())
}

func TestProcessRunner_TextMode(t *testing.T) {
	r := newShellRunner(t, map[string]string{
		"answer.sh": "echo \"answer to: $1\"\n",
	})

	out, err := r.Invoke(context.Background(), ModeText, "answer.sh", []string{"hello"}, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "answer to: hello", string(out))
}

func TestProcessRunner_TrimsStdout(t *testing.T) {
	r := newShellRunner(t, map[string]string{
		"padded.sh": "printf '  spaced out  \\n\\n'\n",
	})

	out, err := r.Invoke(context.Background(), ModeText, "padded.sh", nil, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "spaced out", string(out))
}

func TestProcessRunner_JSONMode(t *testing.T) {
	r := newShellRunner(t, map[string]string{
		"json.sh": "echo '{\"response\": \"ok\"}'\n",
		"junk.sh": "echo 'this is not json'\n",
	})

	out, err := r.Invoke(context.Background(), ModeJSON, "json.sh", nil, 2*time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"response": "ok"}`, string(out))

	_, err = r.Invoke(context.Background(), ModeJSON, "junk.sh", nil, 2*time.Second)
	assert.ErrorIs(t, err, nebula_errors.ErrMalformedResponse)
}

func TestProcessRunner_NonZeroExit(t *testing.T) {
	r := newShellRunner(t, map[string]string{
		"fail.sh": "echo 'boom' >&2\nexit 3\n",
	})

	_, err := r.Invoke(context.Background(), ModeText, "fail.sh", nil, 2*time.Second)
	assert.ErrorIs(t, err, nebula_errors.ErrProcessFailure)
}

func TestProcessRunner_Timeout(t *testing.T) {
	r := newShellRunner(t, map[string]string{
		"slow.sh": "sleep 5\necho 'too late'\n",
	})

	start := time.Now()
	_, err := r.Invoke(context.Background(), ModeText, "slow.sh", nil, 100*time.Millisecond)
	assert.ErrorIs(t, err, nebula_errors.ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProcessRunner_ContextCancel(t *testing.T) {
	r := newShellRunner(t, map[string]string{
		"slow.sh": "sleep 5\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := r.Invoke(ctx, ModeText, "slow.sh", nil, 10*time.Second)
	assert.ErrorIs(t, err, nebula_errors.ErrTimeout)
}

func TestProcessRunner_MissingScript(t *testing.T) {
	r := newShellRunner(t, nil)

	_, err := r.Invoke(context.Background(), ModeText, "nope.sh", nil, 2*time.Second)
	assert.ErrorIs(t, err, nebula_errors.ErrProcessFailure)
}
