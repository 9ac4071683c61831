package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const (
	DefaultSSHServerPort = 22
	defaultSSHTimeout    = 15 * time.Second
)

var (
	ErrSSHClientFactoryNil       = errors.New("ssh client factory is nil")
	ErrSSHServerIPRequired       = errors.New("server ip is required")
	ErrSSHServerUserRequired     = errors.New("ssh server user is required")
	ErrSSHPrivateKeyPathRequired = errors.New("ssh private key path is required")
	ErrRemoteRootRequired        = errors.New("remote root is required")
)

// ServerConfig addresses one storage server reachable over ssh.
type ServerConfig struct {
	Name           string
	IP             string
	Port           int
	User           string
	PrivateKeyPath string
	Timeout        time.Duration
}

func NormalizeServerConfig(cfg ServerConfig) (ServerConfig, error) {
	normalized := cfg
	normalized.IP = strings.TrimSpace(normalized.IP)
	normalized.User = strings.TrimSpace(normalized.User)
	normalized.PrivateKeyPath = expandHome(strings.TrimSpace(normalized.PrivateKeyPath))
	if normalized.Port == 0 {
		normalized.Port = DefaultSSHServerPort
	}
	if normalized.Timeout <= 0 {
		normalized.Timeout = defaultSSHTimeout
	}
	if normalized.IP == "" {
		return ServerConfig{}, ErrSSHServerIPRequired
	}
	if normalized.User == "" {
		return ServerConfig{}, ErrSSHServerUserRequired
	}
	if normalized.PrivateKeyPath == "" {
		return ServerConfig{}, ErrSSHPrivateKeyPathRequired
	}
	return normalized, nil
}

type remoteFileClient interface {
	MkdirAll(remoteDir string) error
	UploadFile(localPath, remotePath string) (int64, error)
	Close() error
}

type remoteFileClientFactory interface {
	New(server ServerConfig) (remoteFileClient, error)
}

// SFTPStore writes objects as files under Root on a storage server. The
// bucket maps to Root, keys map to relative paths below it.
type SFTPStore struct {
	server        ServerConfig
	root          string
	clientFactory remoteFileClientFactory
	logger        *slog.Logger
}

func NewSFTPStore(server ServerConfig, root string, logger *slog.Logger) (*SFTPStore, error) {
	return newSFTPStore(server, root, &sshSFTPClientFactory{}, logger)
}

func newSFTPStore(server ServerConfig, root string, factory remoteFileClientFactory, logger *slog.Logger) (*SFTPStore, error) {
	normalized, err := NormalizeServerConfig(server)
	if err != nil {
		return nil, err
	}
	normalizedRoot, err := normalizeRemoteFilePath(root)
	if err != nil {
		return nil, ErrRemoteRootRequired
	}
	if factory == nil {
		return nil, ErrSSHClientFactoryNil
	}
	return &SFTPStore{
		server:        normalized,
		root:          normalizedRoot,
		clientFactory: factory,
		logger:        storeLogger(logger, "sftp"),
	}, nil
}

func (s *SFTPStore) Location() string {
	return s.server.Name + ":" + s.root
}

func (s *SFTPStore) EnsureBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := s.clientFactory.New(s.server)
	if err != nil {
		return fmt.Errorf("connect storage server %s failed: %w", s.server.IP, err)
	}
	defer s.closeClient(client)

	if err := client.MkdirAll(s.root); err != nil {
		return fmt.Errorf("create remote root %s failed: %w", s.root, err)
	}
	return nil
}

func (s *SFTPStore) PutFile(ctx context.Context, key, localPath, _ string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	objectKey, err := normalizeObjectKey(key)
	if err != nil {
		return 0, err
	}
	source, err := checkLocalSource(localPath)
	if err != nil {
		return 0, err
	}
	remotePath := path.Join(s.root, objectKey)

	start := time.Now()
	client, err := s.clientFactory.New(s.server)
	if err != nil {
		return 0, fmt.Errorf("connect storage server %s failed: %w", s.server.IP, err)
	}
	defer s.closeClient(client)

	written, err := client.UploadFile(source, remotePath)
	if err != nil {
		return 0, err
	}

	s.logger.Info(
		"upload success",
		"server_name", s.server.Name,
		"server_ip", s.server.IP,
		"bytes", written,
		"cost_ms", time.Since(start).Milliseconds(),
		"target_path", remotePath,
	)
	return written, nil
}

func (s *SFTPStore) closeClient(client remoteFileClient) {
	if err := client.Close(); err != nil {
		s.logger.Error("close ssh client failed", "server_name", s.server.Name, "error", err)
	}
}

func normalizeRemoteFilePath(rawPath string) (string, error) {
	value := strings.TrimSpace(strings.ReplaceAll(rawPath, "\\", "/"))
	if value == "" {
		return "", ErrObjectKeyRequired
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	value = path.Clean(value)
	if value == "/" || value == "." {
		return "", ErrObjectKeyRequired
	}
	return value, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return home + strings.TrimPrefix(p, "~")
}

type sshSFTPClientFactory struct{}

func (f *sshSFTPClientFactory) New(server ServerConfig) (remoteFileClient, error) {
	return newSSHSFTPClient(server)
}

type sshSFTPClient struct {
	sshClient  *ssh.Client
	sftpClient *sftp.Client
}

func newSSHSFTPClient(server ServerConfig) (*sshSFTPClient, error) {
	normalized, err := NormalizeServerConfig(server)
	if err != nil {
		return nil, err
	}

	keyBytes, err := os.ReadFile(normalized.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key failed: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key failed: %w", err)
	}

	clientConfig := &ssh.ClientConfig{
		User: normalized.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         normalized.Timeout,
	}

	address := net.JoinHostPort(normalized.IP, strconv.Itoa(normalized.Port))
	sshClient, err := ssh.Dial("tcp", address, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("dial ssh failed: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("create sftp client failed: %w", err)
	}

	return &sshSFTPClient{
		sshClient:  sshClient,
		sftpClient: sftpClient,
	}, nil
}

func (c *sshSFTPClient) MkdirAll(remoteDir string) error {
	return c.sftpClient.MkdirAll(remoteDir)
}

func (c *sshSFTPClient) UploadFile(localPath, remotePath string) (int64, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("open local file failed: %w", err)
	}
	defer src.Close()

	if err := c.sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
		return 0, fmt.Errorf("create remote directory failed: %w", err)
	}

	dst, err := c.sftpClient.Create(remotePath)
	if err != nil {
		return 0, fmt.Errorf("create remote file failed: %w", err)
	}
	return copyAndClose(dst, src)
}

// copyAndClose streams src into dst and closes dst. A close error fails the copy.
func copyAndClose(dst io.WriteCloser, src io.Reader) (int64, error) {
	written, err := io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		return 0, fmt.Errorf("write remote file failed: %w", err)
	}
	if err := dst.Close(); err != nil {
		return 0, fmt.Errorf("close remote file failed: %w", err)
	}
	return written, nil
}

func (c *sshSFTPClient) Close() error {
	var firstErr error
	if c.sftpClient != nil {
		if err := c.sftpClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.sshClient != nil {
		if err := c.sshClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
