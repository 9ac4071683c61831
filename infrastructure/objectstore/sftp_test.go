package objectstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemoteFileClientFactory struct {
	client      *fakeRemoteFileClient
	serverCalls []ServerConfig
	newErr      error
}

func (f *fakeRemoteFileClientFactory) New(server ServerConfig) (remoteFileClient, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	f.serverCalls = append(f.serverCalls, server)
	return f.client, nil
}

type fakeRemoteFileClient struct {
	dirs        map[string]bool
	remoteFiles map[string][]byte
	uploadErr   error
	closed      int
}

func (f *fakeRemoteFileClient) MkdirAll(remoteDir string) error {
	if f.dirs == nil {
		f.dirs = make(map[string]bool)
	}
	f.dirs[remoteDir] = true
	return nil
}

func (f *fakeRemoteFileClient) UploadFile(localPath, remotePath string) (int64, error) {
	if f.uploadErr != nil {
		return 0, f.uploadErr
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		return 0, err
	}
	if f.remoteFiles == nil {
		f.remoteFiles = make(map[string][]byte)
	}
	f.remoteFiles[remotePath] = content
	return int64(len(content)), nil
}

func (f *fakeRemoteFileClient) Close() error {
	f.closed++
	return nil
}

func testServer() ServerConfig {
	return ServerConfig{
		Name:           "backend",
		IP:             "10.0.0.7",
		Port:           22,
		User:           "root",
		PrivateKeyPath: "/tmp/id_rsa",
		Timeout:        10 * time.Second,
	}
}

func TestSFTPStorePutFile(t *testing.T) {
	client := &fakeRemoteFileClient{}
	factory := &fakeRemoteFileClientFactory{client: client}
	store, err := newSFTPStore(testServer(), "/project/models/", factory, nil)
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "faster_rcnn.pth")
	require.NoError(t, os.WriteFile(local, []byte("rcnn"), 0o644))

	n, err := store.PutFile(context.Background(), "system/id_faster_rcnn.pth", local, ContentTypeOctetStream)
	require.NoError(t, err)

	assert.Equal(t, int64(4), n)
	assert.Equal(t, []byte("rcnn"), client.remoteFiles["/project/models/system/id_faster_rcnn.pth"])
	assert.Equal(t, 1, client.closed)
	require.Len(t, factory.serverCalls, 1)
	assert.Equal(t, "10.0.0.7", factory.serverCalls[0].IP)
}

func TestSFTPStoreEnsureBucketIdempotent(t *testing.T) {
	client := &fakeRemoteFileClient{}
	store, err := newSFTPStore(testServer(), "/project/models", &fakeRemoteFileClientFactory{client: client}, nil)
	require.NoError(t, err)

	require.NoError(t, store.EnsureBucket(context.Background()))
	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.True(t, client.dirs["/project/models"])
	assert.Equal(t, "backend:/project/models", store.Location())
}

func TestSFTPStoreConnectFailure(t *testing.T) {
	factory := &fakeRemoteFileClientFactory{newErr: errors.New("dial ssh failed")}
	store, err := newSFTPStore(testServer(), "/project/models", factory, nil)
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "a.pt")
	require.NoError(t, os.WriteFile(local, []byte("a"), 0o644))

	_, err = store.PutFile(context.Background(), "system/a.pt", local, "")
	assert.ErrorContains(t, err, "dial ssh failed")
	assert.ErrorContains(t, store.EnsureBucket(context.Background()), "dial ssh failed")
}

func TestNewSFTPStoreValidation(t *testing.T) {
	factory := &fakeRemoteFileClientFactory{client: &fakeRemoteFileClient{}}

	server := testServer()
	server.IP = " "
	_, err := newSFTPStore(server, "/root", factory, nil)
	assert.ErrorIs(t, err, ErrSSHServerIPRequired)

	_, err = newSFTPStore(testServer(), "/", factory, nil)
	assert.ErrorIs(t, err, ErrRemoteRootRequired)

	_, err = newSFTPStore(testServer(), "/root", nil, nil)
	assert.ErrorIs(t, err, ErrSSHClientFactoryNil)
}

func TestNormalizeServerConfigDefaults(t *testing.T) {
	cfg, err := NormalizeServerConfig(ServerConfig{IP: "1.2.3.4", User: "root", PrivateKeyPath: "/k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSSHServerPort, cfg.Port)
	assert.Equal(t, defaultSSHTimeout, cfg.Timeout)
}

type fakeRemoteFile struct {
	buf      bytes.Buffer
	closed   bool
	writeErr error
	closeErr error
}

func (f *fakeRemoteFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.buf.Write(p)
}

func (f *fakeRemoteFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestCopyAndClose(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dst := &fakeRemoteFile{}
		written, err := copyAndClose(dst, strings.NewReader("weights"))
		require.NoError(t, err)
		assert.Equal(t, int64(7), written)
		assert.Equal(t, "weights", dst.buf.String())
		assert.True(t, dst.closed)
	})

	t.Run("close error fails upload", func(t *testing.T) {
		closeErr := errors.New("flush failed")
		dst := &fakeRemoteFile{closeErr: closeErr}
		written, err := copyAndClose(dst, strings.NewReader("weights"))
		assert.ErrorIs(t, err, closeErr)
		assert.Zero(t, written)
	})

	t.Run("write error still closes", func(t *testing.T) {
		writeErr := errors.New("connection lost")
		dst := &fakeRemoteFile{writeErr: writeErr}
		_, err := copyAndClose(dst, strings.NewReader("weights"))
		assert.ErrorIs(t, err, writeErr)
		assert.True(t, dst.closed)
	})
}
