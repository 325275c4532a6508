// Package keystore persists DKG key shares as password-encrypted files.
//
// Each share lives in its own file named by key ID, encrypted with
// AES-256-GCM under a key derived from the password with PBKDF2-SHA256.
// The file layout is salt(32) || nonce(12) || ciphertext || tag(16).
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/f3rmion/fdkg/dkg"
	"github.com/f3rmion/fdkg/group"
)

var (
	// ErrNotFound is returned when no key share is stored under an ID.
	ErrNotFound = errors.New("keystore: key share not found")
	// ErrInvalidKeyID is returned for IDs that are empty, contain path
	// separators or collide with temporary files.
	ErrInvalidKeyID = errors.New("keystore: invalid key ID")
	// ErrDecryptionFailed is returned when a stored file cannot be
	// decrypted, either because the password is wrong or the file was
	// modified.
	ErrDecryptionFailed = errors.New("keystore: decryption failed")
)

const (
	sharesDirName = "keyshares"
	tmpSuffix     = ".tmp"
	filePerms     = 0o600
	dirPerms      = 0o700

	saltLength       = 32
	nonceLength      = 12
	keyLength        = 32
	pbkdf2Iterations = 100000
)

// Manager stores and retrieves encrypted key shares under one directory.
type Manager struct {
	dir      string
	password string
}

// NewManager creates homeDir/keyshares if needed and returns a manager
// encrypting with password.
func NewManager(homeDir, password string) (*Manager, error) {
	if homeDir == "" {
		return nil, errors.New("keystore: home directory cannot be empty")
	}
	if password == "" {
		return nil, errors.New("keystore: password cannot be empty")
	}
	dir := filepath.Join(homeDir, sharesDirName)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("create keyshares directory: %w", err)
	}
	return &Manager{dir: dir, password: password}, nil
}

// Dir returns the directory holding the share files.
func (m *Manager) Dir() string {
	return m.dir
}

func checkKeyID(keyID string) error {
	if keyID == "" {
		return ErrInvalidKeyID
	}
	if strings.ContainsAny(keyID, `/\`) || strings.Contains(keyID, "..") || strings.HasSuffix(keyID, tmpSuffix) {
		return fmt.Errorf("%w: %q", ErrInvalidKeyID, keyID)
	}
	return nil
}

// Store encrypts data and writes it as keyID, replacing any previous
// share. The write goes through a temporary file and a rename so a crash
// never leaves a truncated share behind.
func (m *Manager) Store(keyID string, data []byte) error {
	if err := checkKeyID(keyID); err != nil {
		return err
	}
	sealed, err := m.encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypt key share: %w", err)
	}

	path := filepath.Join(m.dir, keyID)
	tmp := path + tmpSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerms)
	if err != nil {
		return fmt.Errorf("create key share file: %w", err)
	}
	if _, err := f.Write(sealed); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write key share file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync key share file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close key share file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install key share file: %w", err)
	}
	return nil
}

// Get reads and decrypts the share stored as keyID.
func (m *Manager) Get(keyID string) ([]byte, error) {
	if err := checkKeyID(keyID); err != nil {
		return nil, err
	}
	sealed, err := os.ReadFile(filepath.Join(m.dir, keyID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read key share file: %w", err)
	}
	return m.decrypt(sealed)
}

// Exists reports whether a share is stored as keyID.
func (m *Manager) Exists(keyID string) (bool, error) {
	if err := checkKeyID(keyID); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(m.dir, keyID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat key share file: %w", err)
	}
	return true, nil
}

// Delete removes the share stored as keyID.
func (m *Manager) Delete(keyID string) error {
	if err := checkKeyID(keyID); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(m.dir, keyID)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove key share file: %w", err)
	}
	return nil
}

// List returns the stored key IDs in directory order.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read keyshares directory: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), tmpSuffix) {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}

// StoreInfo encodes info and stores it as keyID.
func (m *Manager) StoreInfo(keyID string, info *dkg.MultiPartyInfo) error {
	data, err := info.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode key share: %w", err)
	}
	return m.Store(keyID, data)
}

// LoadInfo reads the share stored as keyID and decodes it over g.
func (m *Manager) LoadInfo(g group.Group, keyID string) (*dkg.MultiPartyInfo, error) {
	data, err := m.Get(keyID)
	if err != nil {
		return nil, err
	}
	return dkg.UnmarshalInfo(g, data)
}

func (m *Manager) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(m.password), salt, pbkdf2Iterations, keyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *Manager) encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, errors.New("key share data cannot be empty")
	}
	buf := make([]byte, saltLength+nonceLength, saltLength+nonceLength+len(plaintext)+16)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("generate salt and nonce: %w", err)
	}
	gcm, err := m.aead(buf[:saltLength])
	if err != nil {
		return nil, err
	}
	return gcm.Seal(buf, buf[saltLength:], plaintext, nil), nil
}

func (m *Manager) decrypt(sealed []byte) ([]byte, error) {
	if len(sealed) < saltLength+nonceLength {
		return nil, ErrDecryptionFailed
	}
	gcm, err := m.aead(sealed[:saltLength])
	if err != nil {
		return nil, err
	}
	nonce := sealed[saltLength : saltLength+nonceLength]
	plaintext, err := gcm.Open(nil, nonce, sealed[saltLength+nonceLength:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
