package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/dropzone/internal/shared"
	tu "github.com/desertthunder/dropzone/internal/testing"
)

func TestUpload(t *testing.T) {
	t.Run("prints progress then the task log", func(t *testing.T) {
		backend := tu.NewBackend(t, tu.BackendOpts{Lines: []string{"first", "second"}})
		dir := t.TempDir()
		path := tu.WriteFile(t, dir, "data.bin", bytes.Repeat([]byte{0xAB}, 10*1024))
		output := &bytes.Buffer{}

		err := run(t, quietRunner(output), "-c", filepath.Join(dir, "none.toml"), "-s", backend.URL, "upload", path)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "\rUploading: 100%\n") {
			t.Errorf("expected final progress line, got %q", out)
		}
		if !strings.HasSuffix(out, "first\nsecond\n") {
			t.Errorf("expected log lines at the end, got %q", out)
		}

		ups := backend.Uploads()
		if len(ups) != 1 || ups[0].FieldName != "file" || ups[0].FileName != "data.bin" || len(ups[0].Data) != 10*1024 {
			t.Errorf("unexpected uploads: %+v", ups)
		}
		if reqs := backend.LogRequests(); len(reqs) != 1 || reqs[0] != "t1" {
			t.Errorf("unexpected log requests: %v", reqs)
		}
	})

	t.Run("uses the configured field name", func(t *testing.T) {
		backend := tu.NewBackend(t, tu.BackendOpts{})
		dir := t.TempDir()
		config := writeConfig(t, dir, func(c *shared.Config) { c.Upload.FieldName = "document" })
		path := tu.WriteFile(t, dir, "a.txt", []byte("hello"))

		if err := run(t, quietRunner(&bytes.Buffer{}), "-c", config, "-s", backend.URL, "upload", path); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if ups := backend.Uploads(); len(ups) != 1 || ups[0].FieldName != "document" {
			t.Errorf("unexpected uploads: %+v", ups)
		}
	})

	t.Run("failures", func(t *testing.T) {
		tests := []struct {
			name    string
			opts    tu.BackendOpts
			wantErr error
			wantOut string
		}{
			{
				name:    "missing task id",
				opts:    tu.BackendOpts{UploadBody: `{}`},
				wantErr: shared.ErrNoTaskID,
				wantOut: "Error: No task ID received.\n",
			},
			{
				name:    "server error",
				opts:    tu.BackendOpts{UploadStatus: 500},
				wantErr: shared.ErrUploadRejected,
				wantOut: "Error uploading file.\n",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				backend := tu.NewBackend(t, tt.opts)
				dir := t.TempDir()
				path := tu.WriteFile(t, dir, "a.txt", []byte("hello"))
				output := &bytes.Buffer{}

				err := run(t, quietRunner(output), "-c", filepath.Join(dir, "none.toml"), "-s", backend.URL, "upload", path)
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !strings.HasSuffix(output.String(), tt.wantOut) {
					t.Errorf("expected output ending in %q, got %q", tt.wantOut, output.String())
				}
				if len(backend.LogRequests()) != 0 {
					t.Error("log stream should not be opened")
				}
			})
		}
	})

	t.Run("no files is not an error", func(t *testing.T) {
		backend := tu.NewBackend(t, tu.BackendOpts{})
		dir := t.TempDir()
		output := &bytes.Buffer{}

		err := run(t, quietRunner(output), "-c", filepath.Join(dir, "none.toml"), "-s", backend.URL, "upload", dir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(backend.Uploads()) != 0 || output.Len() != 0 {
			t.Errorf("expected no upload and no output, got %d uploads, %q", len(backend.Uploads()), output.String())
		}
	})

	t.Run("requires a path", func(t *testing.T) {
		err := run(t, quietRunner(&bytes.Buffer{}), "-c", filepath.Join(t.TempDir(), "none.toml"), "upload")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects negative rate limit", func(t *testing.T) {
		dir := t.TempDir()
		path := tu.WriteFile(t, dir, "a.txt", []byte("hello"))
		err := run(t, quietRunner(&bytes.Buffer{}), "-c", filepath.Join(dir, "none.toml"), "upload", "--rate-limit=-5", path)
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("uses injected services", func(t *testing.T) {
		dir := t.TempDir()
		path := tu.WriteFile(t, dir, "a.txt", []byte("hello"))
		output := &bytes.Buffer{}
		uploader := &tu.FakeUploader{Handle: "fake-task"}
		streamer := &tu.FakeStreamer{Lines: []string{"only line"}}

		runner := quietRunner(output)
		runner.uploader = uploader
		runner.streamer = streamer

		if err := run(t, runner, "-c", filepath.Join(dir, "none.toml"), "upload", path); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if output.String() != "only line\n" {
			t.Errorf("unexpected output %q", output.String())
		}
		if handles := streamer.Streamed(); len(handles) != 1 || handles[0] != "fake-task" {
			t.Errorf("unexpected streamed handles: %v", handles)
		}
	})
}
