package backup

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// Encrypted snapshot layout:
//
//	[4-byte magic "CHB1"][16-byte salt][12-byte nonce][AES-256-GCM ciphertext]
//
// The magic header is bound as GCM additional data, so a truncated or
// foreign file fails authentication instead of decrypting to garbage.
var snapshotMagic = []byte("CHB1")

const (
	saltSize  = 16
	nonceSize = 12

	// Argon2id parameters for key derivation.
	kdfTime    = 3
	kdfMemory  = 64 * 1024
	kdfThreads = 4
	kdfKeyLen  = 32
)

// GenerateSalt returns a fresh random salt for key derivation.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches a passphrase into an AES-256 key with Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
}

func newSealer(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// EncryptFile seals srcPath into an encrypted snapshot at dstPath.
func EncryptFile(srcPath, dstPath, passphrase string, salt []byte) error {
	if len(salt) != saltSize {
		return fmt.Errorf("salt must be %d bytes, got %d", saltSize, len(salt))
	}

	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	gcm, err := newSealer(passphrase, salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, len(snapshotMagic)+saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, snapshotMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, snapshotMagic)

	if err := os.WriteFile(dstPath, out, 0600); err != nil {
		return fmt.Errorf("write encrypted file: %w", err)
	}
	return nil
}

// DecryptFile opens an encrypted snapshot at srcPath and writes the
// plaintext to dstPath. The salt is recovered from the snapshot header.
func DecryptFile(srcPath, dstPath, passphrase string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read encrypted file: %w", err)
	}

	headerLen := len(snapshotMagic) + saltSize + nonceSize
	if len(data) < headerLen {
		return fmt.Errorf("encrypted file too small")
	}
	if !bytes.Equal(data[:len(snapshotMagic)], snapshotMagic) {
		return fmt.Errorf("not a chime backup file")
	}

	salt := data[len(snapshotMagic) : len(snapshotMagic)+saltSize]
	nonce := data[len(snapshotMagic)+saltSize : headerLen]
	ciphertext := data[headerLen:]

	gcm, err := newSealer(passphrase, salt)
	if err != nil {
		return err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, snapshotMagic)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	if err := os.WriteFile(dstPath, plaintext, 0600); err != nil {
		return fmt.Errorf("write decrypted file: %w", err)
	}
	return nil
}
