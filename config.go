package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/riobard/go-symcrypt/core"
	"github.com/riobard/go-symcrypt/symmetric"
)

const envPrefix = "symcrypt"

var config struct {
	Verbose    bool
	Config     string
	Cipher     string
	Key        string
	Password   string
	IV         string
	Salt       string
	Iterations int
	BufferSize int
}

var logger = hclog.NewNullLogger()

func logf(f string, v ...interface{}) {
	if config.Verbose {
		logger.Debug(fmt.Sprintf(f, v...))
	}
}

func bindFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&config.Verbose, "verbose", "v", false, "verbose mode")
	fs.StringVar(&config.Config, "config", "", "YAML config file")
	fs.StringVarP(&config.Cipher, "cipher", "c", "AES/CBC/PKCS5Padding", "ALGORITHM[/MODE/PADDING], see the list command")
	fs.StringVarP(&config.Key, "key", "k", "", "base64url-encoded key (derive from password if empty)")
	fs.StringVarP(&config.Password, "password", "p", "", "password")
	fs.StringVar(&config.IV, "iv", "", "hex-encoded IV (generated on encryption if empty)")
	fs.StringVar(&config.Salt, "salt", "", "hex-encoded PBE salt (generated if empty)")
	fs.IntVar(&config.Iterations, "iterations", core.DefaultIterations, "PBE iteration count")
	fs.IntVar(&config.BufferSize, "buffer-size", 0, "read size of zero-padded stream decryption")
}

// loadConfig fills every flag not set on the command line from SYMCRYPT_*
// environment variables, then from the config file.
func loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := configFile(cmd, v); file != "" {
		if err := readConfigFile(v, file); err != nil {
			return errors.Wrapf(err, "read config %s", file)
		}
	}

	var errs []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil {
			errs = append(errs, err.Error())
		}
	})
	if len(errs) > 0 {
		return errors.Errorf("error mapping configuration to flags: %s", strings.Join(errs, "; "))
	}
	return nil
}

// readConfigFile merges the top-level scalars of a YAML file into v as
// their literal text, so hex made of digits only stays a string.
func readConfigFile(v *viper.Viper, file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	m := make(map[string]interface{}, len(doc))
	for k, n := range doc {
		if n.Kind != yaml.ScalarNode {
			return errors.Errorf("%s is not a scalar", k)
		}
		m[k] = n.Value
	}
	return v.MergeConfigMap(m)
}

func configFile(cmd *cobra.Command, v *viper.Viper) string {
	if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	return v.GetString("config")
}

func newLogger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	if config.Verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "symcrypt",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
}

func decodeKey(s string) ([]byte, error) {
	if k, err := base64.URLEncoding.DecodeString(s); err == nil {
		return k, nil
	}
	k, err := base64.RawURLEncoding.DecodeString(s)
	return k, errors.Wrap(err, "decode key")
}

// sessionKey picks the key material: an explicit key, the password itself
// for PBE schemes, a key derived from the password otherwise, or nil for a
// random key.
func sessionKey() ([]byte, error) {
	if config.Key != "" {
		return decodeKey(config.Key)
	}
	if config.Password == "" {
		return nil, nil
	}
	if core.IsPBE(config.Cipher) {
		return []byte(config.Password), nil
	}
	size, err := core.KeySize(config.Cipher)
	if err != nil {
		return nil, err
	}
	logf("deriving %d-byte key from password", size)
	return core.Kdf(config.Password, size), nil
}

func sessionParams() (*core.Params, error) {
	if config.IV == "" && config.Salt == "" {
		return nil, nil
	}
	p := &core.Params{Iterations: config.Iterations}
	if config.IV != "" {
		iv, err := hex.DecodeString(config.IV)
		if err != nil {
			return nil, errors.Wrap(err, "decode IV")
		}
		p.IV = iv
	}
	if config.Salt != "" {
		salt, err := hex.DecodeString(config.Salt)
		if err != nil {
			return nil, errors.Wrap(err, "decode salt")
		}
		p.Salt = salt
	}
	return p, nil
}

var errKeyRequired = errors.New("decryption needs --key or --password")

// newSession builds the session for op. Encryption without key material
// runs under a generated key, which is logged like the other generated
// parameters.
func newSession(op core.Mode) (*symmetric.Crypto, error) {
	if op == core.DecryptMode && config.Key == "" && config.Password == "" {
		return nil, errKeyRequired
	}
	key, err := sessionKey()
	if err != nil {
		return nil, err
	}
	params, err := sessionParams()
	if err != nil {
		return nil, err
	}
	opts := []symmetric.Option{
		symmetric.WithLogger(logger),
		symmetric.WithBufferSize(config.BufferSize),
	}
	if params != nil {
		opts = append(opts, symmetric.WithParams(params))
	}
	c, err := symmetric.New(config.Cipher, key, opts...)
	if err != nil {
		return nil, err
	}
	if key == nil {
		reportKey(c)
	}
	logf("cipher %s, block size %d", c.Algorithm(), c.BlockSize())
	return c, nil
}

func reportKey(c *symmetric.Crypto) {
	if core.IsPBE(config.Cipher) {
		logger.Info("generated password", "password", string(c.SecretKey()))
		return
	}
	logger.Info("generated key", "key", base64.URLEncoding.EncodeToString(c.SecretKey()))
}
