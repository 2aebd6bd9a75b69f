package crypt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"github.com/pterm/pterm"
)

// scrypt work factor of new recipients; tests lower it.
var workFactor = 18

var ErrEmptyPassphrase = errors.New("empty passphrase")

// WriteCloserWithSize counts the plaintext bytes written through it.
type WriteCloserWithSize interface {
	io.WriteCloser
	Size() uint64
}

// Encrypt wraps w so everything written is age encrypted with passphrase.
// Closing the result finishes the encryption and closes w if it is a Closer.
func Encrypt(w io.Writer, passphrase string) (WriteCloserWithSize, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, err
	}
	recipient.SetWorkFactor(workFactor)

	ageWriteCloser, err := age.Encrypt(w, recipient)
	if err != nil {
		return nil, fmt.Errorf("start encryption: %w", err)
	}
	return &sizeWriteCloser{
		wc:    ageWriteCloser,
		inner: w,
	}, nil
}

// Plain counts bytes written to w without encrypting them.
func Plain(w io.Writer) WriteCloserWithSize {
	return &sizeWriteCloser{
		wc:    nopWriteCloser{w},
		inner: w,
	}
}

// EncryptToFile creates fileName and returns an encrypting writer into it.
func EncryptToFile(fileName string, passphrase string) (WriteCloserWithSize, error) {
	targetFile, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	wc, err := Encrypt(targetFile, passphrase)
	if err != nil {
		_ = targetFile.Close()
		return nil, err
	}
	return wc, nil
}

// Decrypt returns a reader over the plaintext of the age file in r.
func Decrypt(r io.Reader, passphrase string) (io.Reader, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	decrypted, err := age.Decrypt(r, identity)
	if err != nil {
		return nil, fmt.Errorf("could not decrypt: %w", err)
	}
	return decrypted, nil
}

// DecryptToTempFile writes the plaintext of fileName to a temporary file only
// readable by the current user. The returned cleanup removes it and must be
// called on every path.
func DecryptToTempFile(fileName string, passphrase string) (string, func(), error) {
	source, err := os.Open(fileName)
	if err != nil {
		return "", func() {}, fmt.Errorf("Import file missing or not readable: %s", fileName)
	}
	defer source.Close()

	plain, err := Decrypt(source, passphrase)
	if err != nil {
		return "", func() {}, err
	}

	tmp, err := os.CreateTemp("", "dbkit-import-*.sql")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() {
		pterm.Debug.Printfln("Removing %s", tmp.Name())
		_ = os.Remove(tmp.Name())
	}
	// CreateTemp already uses 0600
	if _, err := io.Copy(tmp, plain); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("decrypt %s: %w", fileName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return tmp.Name(), cleanup, nil
}

type sizeWriteCloser struct {
	wc           io.WriteCloser
	inner        io.Writer
	writtenBytes uint64
}

func (f *sizeWriteCloser) Size() uint64 {
	return f.writtenBytes
}

func (f *sizeWriteCloser) Write(p []byte) (n int, err error) {
	n, err = f.wc.Write(p)
	f.writtenBytes += uint64(n)
	return n, err
}

func (f *sizeWriteCloser) Close() error {
	if err := f.wc.Close(); err != nil {
		return err
	}
	// stdout is never closed
	if c, ok := f.inner.(io.Closer); ok && f.inner != io.Writer(os.Stdout) {
		return c.Close()
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
