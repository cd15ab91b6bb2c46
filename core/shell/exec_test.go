package shell

import (
	"bytes"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/josephlewis42/accsh/core/vio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLookPathFs(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	files := map[string]fs.FileMode{
		"/bin/ls":           0755,
		"/usr/bin/ls":       0755,
		"/usr/bin/tool":     0755,
		"/bin/readme":       0644,
		"/home/user/script": 0700,
		"/home/user/data":   0600,
	}
	for path, mode := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte("#!/bin/sh\n"), mode))
		require.NoError(t, fsys.Chmod(path, mode))
	}
	require.NoError(t, fsys.MkdirAll("/bin/subdir", 0755))
	return fsys
}

func TestLookPath(t *testing.T) {
	fsys := newLookPathFs(t)

	cases := map[string]struct {
		path    string
		dir     string
		file    string
		want    string
		wantErr error
	}{
		"first-match-wins": {
			path: "/bin:/usr/bin",
			file: "ls",
			want: "/bin/ls",
		},
		"search-order": {
			path: "/usr/bin:/bin",
			file: "ls",
			want: "/usr/bin/ls",
		},
		"later-entry": {
			path: "/bin:/usr/bin",
			file: "tool",
			want: "/usr/bin/tool",
		},
		"not-executable": {
			path:    "/bin",
			file:    "readme",
			wantErr: ErrNotFound,
		},
		"directory": {
			path:    "/bin",
			file:    "subdir",
			wantErr: ErrNotFound,
		},
		"missing": {
			path:    "/bin:/usr/bin",
			file:    "nope",
			wantErr: ErrNotFound,
		},
		"empty-path": {
			path: "",
			dir:  "/bin",
			file: "ls",
			want: "/bin/ls",
		},
		"empty-element-is-dir": {
			path: "/usr/local/bin::",
			dir:  "/home/user",
			file: "script",
			want: "/home/user/script",
		},
		"relative-element": {
			path: "user",
			dir:  "/home",
			file: "script",
			want: "/home/user/script",
		},
		"absolute-file": {
			path: "",
			file: "/usr/bin/tool",
			want: "/usr/bin/tool",
		},
		"relative-file": {
			path: "/bin",
			dir:  "/home/user",
			file: "./script",
			want: "/home/user/script",
		},
		"relative-file-skips-path": {
			path:    "/bin",
			dir:     "/",
			file:    "./ls",
			wantErr: fs.ErrNotExist,
		},
		"slash-not-executable": {
			path:    "",
			file:    "/home/user/data",
			wantErr: fs.ErrPermission,
		},
		"empty-name": {
			path:    "/bin",
			file:    "",
			wantErr: ErrNotFound,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			dir := tc.dir
			if dir == "" {
				dir = "/"
			}

			got, err := LookPath(fsys, tc.path, dir, tc.file)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLaunchFailure(t *testing.T) {
	var buf bytes.Buffer
	status := LaunchFailure(&buf, "frob", ErrNotFound)

	assert.Equal(t, StatusLaunchFailure, status)
	assert.Equal(t, "execvp: frob: executable file not found in $PATH\n", buf.String())
}

func TestExitStatus_nil(t *testing.T) {
	assert.Equal(t, StatusAbnormal, ExitStatus(nil))
}

func TestProcessExecutor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not installed")
	}

	if _, err := os.Stat(BourneShell); err != nil {
		t.Skip("no shell at " + BourneShell)
	}

	script := filepath.Join(t.TempDir(), "noshebang")
	require.NoError(t, os.WriteFile(script, []byte("echo $1\nexit 5\n"), 0755))

	executor := &ProcessExecutor{Fs: afero.NewOsFs()}
	environ := []string{"PATH=/bin:/usr/bin", "GREETING=hi"}

	cases := map[string]struct {
		argv       []string
		env        []string
		wantStatus int
		wantStdout string
		wantStderr string
	}{
		"success": {
			argv:       []string{sh, "-c", "exit 0"},
			wantStatus: 0,
		},
		"exit-code": {
			argv:       []string{sh, "-c", "exit 3"},
			wantStatus: 3,
		},
		"environment": {
			argv:       []string{sh, "-c", "echo $GREETING"},
			wantStatus: 0,
			wantStdout: "hi\n",
		},
		"working-directory": {
			argv:       []string{sh, "-c", "pwd"},
			wantStatus: 0,
			wantStdout: "/\n",
		},
		"signal": {
			argv:       []string{sh, "-c", "kill -9 $$"},
			wantStatus: StatusAbnormal,
		},
		"not-found": {
			argv:       []string{"accsh-no-such-program"},
			wantStatus: StatusLaunchFailure,
			wantStderr: "execvp: accsh-no-such-program: executable file not found in $PATH\n",
		},
		"unset-path-uses-default": {
			argv:       []string{"sh", "-c", "exit 6"},
			env:        []string{"GREETING=hi"},
			wantStatus: 6,
		},
		"script-without-interpreter": {
			argv:       []string{script, "arg"},
			wantStatus: 5,
			wantStdout: "arg\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			reqEnv := environ
			if tc.env != nil {
				reqEnv = tc.env
			}

			var stdout, stderr bytes.Buffer
			status := executor.Spawn(&Request{
				Argv: tc.argv,
				Env:  reqEnv,
				Dir:  "/",
				IO:   vio.NewAdapter(nil, &stdout, &stderr),
			})

			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantStdout, stdout.String())
			assert.Equal(t, tc.wantStderr, stderr.String())
		})
	}
}
