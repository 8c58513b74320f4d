package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riobard/go-symcrypt/core"
)

var (
	testKey = base64.URLEncoding.EncodeToString([]byte("0123456789abcdef"))
	testIV  = hex.EncodeToString([]byte("fedcba9876543210"))
)

func run(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(bytes.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestListCommand(t *testing.T) {
	out, _, err := run(t, nil, "list")
	require.NoError(t, err)
	require.Contains(t, out, "AES")
	require.Contains(t, out, "ChaCha20-Poly1305")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(core.ListCipher()))
}

func TestKeygenCommand(t *testing.T) {
	out, _, err := run(t, nil, "keygen")
	require.NoError(t, err)
	key, err := base64.URLEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Len(t, key, 16)

	out, _, err = run(t, nil, "keygen", "--cipher", "DESede")
	require.NoError(t, err)
	key, err = base64.URLEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Len(t, key, 24)

	out, _, err = run(t, nil, "keygen", "-l", "40")
	require.NoError(t, err)
	key, err = base64.URLEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Len(t, key, 40)
}

func TestMessageRoundTrip(t *testing.T) {
	ct, _, err := run(t, nil, "encrypt", "--key", testKey, "--iv", testIV, "hello")
	require.NoError(t, err)

	pt, _, err := run(t, nil, "decrypt", "--key", testKey, "--iv", testIV, strings.TrimSpace(ct))
	require.NoError(t, err)
	require.Equal(t, "hello", pt)

	ct, _, err = run(t, nil, "encrypt", "--key", testKey, "--iv", testIV, "--hex", "hello")
	require.NoError(t, err)
	require.Len(t, strings.TrimSpace(ct), 32)

	pt, _, err = run(t, nil, "decrypt", "--key", testKey, "--iv", testIV, "--hex", strings.TrimSpace(ct))
	require.NoError(t, err)
	require.Equal(t, "hello", pt)

	_, _, err = run(t, nil, "decrypt", "--key", testKey, "--iv", testIV, strings.TrimSpace(ct))
	require.Error(t, err, "hex ciphertext is not base64")
}

func logged(t *testing.T, stderr, name string) string {
	t.Helper()
	m := regexp.MustCompile(`\b` + name + `=(\S+)`).FindStringSubmatch(stderr)
	require.NotNil(t, m, "%s not logged in %q", name, stderr)
	return m[1]
}

func TestGeneratedKeyReported(t *testing.T) {
	ct, stderr, err := run(t, nil, "encrypt", "hello")
	require.NoError(t, err)
	key, iv := logged(t, stderr, "key"), logged(t, stderr, "iv")

	pt, _, err := run(t, nil, "decrypt", "--key", key, "--iv", iv, strings.TrimSpace(ct))
	require.NoError(t, err)
	require.Equal(t, "hello", pt)

	ct, stderr, err = run(t, nil, "encrypt", "--cipher", "PBEWithMD5AndDES", "hello")
	require.NoError(t, err)
	password, salt := logged(t, stderr, "password"), logged(t, stderr, "salt")

	pt, _, err = run(t, nil, "decrypt", "--cipher", "PBEWithMD5AndDES", "--password", password, "--salt", salt, strings.TrimSpace(ct))
	require.NoError(t, err)
	require.Equal(t, "hello", pt)

	_, stderr, err = run(t, nil, "encrypt", "--key", testKey, "hello")
	require.NoError(t, err)
	require.NotContains(t, stderr, "generated key")
}

func TestDecryptNeedsKey(t *testing.T) {
	_, _, err := run(t, nil, "decrypt", "--iv", testIV, "AAAA")
	require.ErrorIs(t, err, errKeyRequired)
}

func TestOutputOpenFailure(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("hello"), 0o600))

	_, _, err := run(t, nil, "encrypt", "--key", testKey, "-i", plain, "-o", filepath.Join(dir, "missing", "out"))
	require.ErrorContains(t, err, "create output")
}

func TestGeneratedParamsReported(t *testing.T) {
	_, stderr, err := run(t, nil, "encrypt", "--key", testKey, "hello")
	require.NoError(t, err)
	require.Contains(t, stderr, "generated parameters")
	require.Contains(t, stderr, "iv=")

	_, stderr, err = run(t, nil, "encrypt", "--cipher", "PBEWithMD5AndDES", "--password", "pw", "hello")
	require.NoError(t, err)
	require.Contains(t, stderr, "salt=")
	require.Contains(t, stderr, "iterations=100")
}

func TestStreamFiles(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	enc := filepath.Join(dir, "enc")
	dec := filepath.Join(dir, "dec")

	data := append(bytes.Repeat([]byte("0123456789"), 5000), 'x')
	require.NoError(t, os.WriteFile(plain, data, 0o600))

	flags := []string{"--cipher", "AES/CBC/ZeroPadding", "--password", "secret", "--iv", testIV, "--buffer-size", "100"}
	_, _, err := run(t, nil, append([]string{"encrypt", "-i", plain, "-o", enc}, flags...)...)
	require.NoError(t, err)

	ct, err := os.ReadFile(enc)
	require.NoError(t, err)
	require.Len(t, ct, 50016)

	_, _, err = run(t, nil, append([]string{"decrypt", "-i", enc, "-o", dec}, flags...)...)
	require.NoError(t, err)

	got, err := os.ReadFile(dec)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestStdioRoundTrip(t *testing.T) {
	data := []byte("piped through stdin and stdout")
	ct, _, err := run(t, data, "encrypt", "-c", "ChaCha20", "-k", base64.URLEncoding.EncodeToString(make([]byte, 32)),
		"--iv", hex.EncodeToString(make([]byte, 12)))
	require.NoError(t, err)
	require.Len(t, ct, len(data))

	pt, _, err := run(t, []byte(ct), "decrypt", "-c", "ChaCha20", "-k", base64.URLEncoding.EncodeToString(make([]byte, 32)),
		"--iv", hex.EncodeToString(make([]byte, 12)))
	require.NoError(t, err)
	require.Equal(t, string(data), pt)
}

func TestEnvironmentAndConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "symcrypt.yaml")
	require.NoError(t, os.WriteFile(file, []byte("key: "+testKey+"\niv: "+testIV+"\n"), 0o600))

	t.Setenv("SYMCRYPT_CIPHER", "AES/CBC/ZeroPadding")
	t.Setenv("SYMCRYPT_CONFIG", file)

	ct, _, err := run(t, nil, "encrypt", "--hex", "hello")
	require.NoError(t, err)
	require.Equal(t, "AES/CBC/ZeroPadding", config.Cipher)
	require.Equal(t, testKey, config.Key)
	require.Equal(t, testIV, config.IV, "digits-only hex stays a string")
	require.Len(t, strings.TrimSpace(ct), 32)

	// command line wins over the environment
	_, _, err = run(t, nil, "encrypt", "--cipher", "AES/ECB/PKCS5Padding", "hello")
	require.NoError(t, err)
	require.Equal(t, "AES/ECB/PKCS5Padding", config.Cipher)
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := run(t, nil, "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfigFileScalars(t *testing.T) {
	file := filepath.Join(t.TempDir(), "symcrypt.yaml")
	iv := "12345678901234567890123456789012"
	salt := "0011223344556677"
	body := "cipher: AES/CBC/PKCS5Padding\nkey: " + testKey + "\niv: " + iv + "\nsalt: " + salt + "\niterations: 1000\n"
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))

	ct, _, err := run(t, nil, "encrypt", "--config", file, "hello")
	require.NoError(t, err)
	require.Equal(t, iv, config.IV)
	require.Equal(t, salt, config.Salt)
	require.Equal(t, 1000, config.Iterations)

	pt, _, err := run(t, nil, "decrypt", "--config", file, strings.TrimSpace(ct))
	require.NoError(t, err)
	require.Equal(t, "hello", pt)

	require.NoError(t, os.WriteFile(file, []byte("iv:\n  - 1\n"), 0o600))
	_, _, err = run(t, nil, "list", "--config", file)
	require.ErrorContains(t, err, "not a scalar")
}

func TestSessionKey(t *testing.T) {
	defer func(cipher, key, password string) {
		config.Cipher, config.Key, config.Password = cipher, key, password
	}(config.Cipher, config.Key, config.Password)

	config.Cipher, config.Key, config.Password = "AES", "", ""
	key, err := sessionKey()
	require.NoError(t, err)
	require.Nil(t, key)

	config.Password = "barfoo!"
	key, err = sessionKey()
	require.NoError(t, err)
	require.Equal(t, core.Kdf("barfoo!", 16), key)

	config.Cipher = "PBEWithHmacSHA256AndAES_256"
	key, err = sessionKey()
	require.NoError(t, err)
	require.Equal(t, []byte("barfoo!"), key)

	config.Key = base64.RawURLEncoding.EncodeToString([]byte("raw key"))
	key, err = sessionKey()
	require.NoError(t, err)
	require.Equal(t, []byte("raw key"), key)

	config.Key = "!!"
	_, err = sessionKey()
	require.Error(t, err)
}

func TestSessionParams(t *testing.T) {
	defer func(iv, salt string, iter int) {
		config.IV, config.Salt, config.Iterations = iv, salt, iter
	}(config.IV, config.Salt, config.Iterations)

	config.IV, config.Salt = "", ""
	p, err := sessionParams()
	require.NoError(t, err)
	require.Nil(t, p)

	config.IV, config.Salt, config.Iterations = "0011", "aabb", 7
	p, err = sessionParams()
	require.NoError(t, err)
	require.Equal(t, &core.Params{IV: []byte{0, 0x11}, Salt: []byte{0xaa, 0xbb}, Iterations: 7}, p)

	config.IV = "xyz"
	_, err = sessionParams()
	require.Error(t, err)

	config.IV, config.Salt = "", "xyz"
	_, err = sessionParams()
	require.Error(t, err)
}
