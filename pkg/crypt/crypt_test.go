package crypt

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	workFactor = 10
}

func TestEncryptDecrypt(t *testing.T) {
	var encrypted bytes.Buffer
	wc, err := Encrypt(&encrypted, "secret")
	require.NoError(t, err)

	_, err = io.WriteString(wc, "INSERT INTO `t` VALUES (1);\n")
	require.NoError(t, err)
	require.NoError(t, wc.Close())
	assert.Equal(t, uint64(28), wc.Size())
	assert.NotContains(t, encrypted.String(), "INSERT")

	plain, err := Decrypt(bytes.NewReader(encrypted.Bytes()), "secret")
	require.NoError(t, err)
	content, err := io.ReadAll(plain)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `t` VALUES (1);\n", string(content))

	_, err = Decrypt(bytes.NewReader(encrypted.Bytes()), "wrong")
	assert.Error(t, err)
}

func TestEmptyPassphrase(t *testing.T) {
	_, err := Encrypt(io.Discard, "")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
	_, err = Decrypt(bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestPlain(t *testing.T) {
	var out bytes.Buffer
	wc := Plain(&out)
	_, err := io.WriteString(wc, "abc")
	require.NoError(t, err)
	require.NoError(t, wc.Close())
	assert.Equal(t, uint64(3), wc.Size())
	assert.Equal(t, "abc", out.String())
}

func TestDecryptToTempFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "dump.sql.age")
	wc, err := EncryptToFile(fileName, "secret")
	require.NoError(t, err)
	_, err = io.WriteString(wc, "SELECT 1;")
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	tmp, cleanup, err := DecryptToTempFile(fileName, "secret")
	require.NoError(t, err)
	content, err := os.ReadFile(tmp)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", string(content))

	info, err := os.Stat(tmp)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cleanup()
	assert.NoFileExists(t, tmp)

	t.Run("wrong passphrase leaves nothing behind", func(t *testing.T) {
		_, cleanup, err := DecryptToTempFile(fileName, "wrong")
		require.Error(t, err)
		cleanup()
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.age")
		_, _, err := DecryptToTempFile(missing, "secret")
		require.EqualError(t, err, "Import file missing or not readable: "+missing)
	})
}
