package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/riobard/go-symcrypt/core"
	"github.com/riobard/go-symcrypt/symmetric"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "symcrypt",
		Short:         "Symmetric encryption of messages and streams",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			logger = newLogger(cmd)
			return nil
		},
	}
	bindFlags(root.PersistentFlags())

	root.AddCommand(
		newCryptCommand(core.EncryptMode),
		newCryptCommand(core.DecryptMode),
		newKeygenCommand(),
		newListCommand(),
	)
	return root
}

func newCryptCommand(op core.Mode) *cobra.Command {
	var inPath, outPath string
	var hexOut bool

	cmd := &cobra.Command{
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession(op)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return cryptMessage(cmd, c, op, args[0], hexOut)
			}
			return cryptStream(cmd, c, op, inPath, outPath)
		},
	}
	if op == core.EncryptMode {
		cmd.Use = "encrypt [message]"
		cmd.Short = "Encrypt a message or a stream"
		cmd.Long = "Encrypt the message argument and print it in base64, or encrypt the input stream to the output when no message is given."
		cmd.Flags().BoolVar(&hexOut, "hex", false, "print an encrypted message in hex instead of base64")
	} else {
		cmd.Use = "decrypt [ciphertext]"
		cmd.Short = "Decrypt a message or a stream"
		cmd.Long = "Decrypt the base64 ciphertext argument, or decrypt the input stream to the output when no ciphertext is given."
		cmd.Flags().BoolVar(&hexOut, "hex", false, "read the ciphertext argument as hex instead of base64")
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "-", "input file, - for stdin")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func cryptMessage(cmd *cobra.Command, c *symmetric.Crypto, op core.Mode, msg string, hexOut bool) error {
	out := cmd.OutOrStdout()
	if op == core.DecryptMode {
		var pt []byte
		var err error
		if hexOut {
			pt, err = c.DecryptHex(msg)
		} else {
			pt, err = c.DecryptBase64(msg)
		}
		if err != nil {
			return err
		}
		_, err = out.Write(pt)
		return err
	}

	var s string
	var err error
	if hexOut {
		s, err = c.EncryptHex([]byte(msg))
	} else {
		s, err = c.EncryptBase64([]byte(msg))
	}
	if err != nil {
		return err
	}
	reportParams(c)
	_, err = fmt.Fprintln(out, s)
	return err
}

func cryptStream(cmd *cobra.Command, c *symmetric.Crypto, op core.Mode, inPath, outPath string) (err error) {
	in, closeIn, err := openInput(cmd, inPath)
	if err != nil {
		return err
	}
	out, err := openOutput(cmd, outPath)
	if err != nil {
		if closeIn {
			if cerr := in.(io.Closer).Close(); cerr != nil {
				err = multierror.Append(err, errors.Wrap(cerr, "close input"))
			}
		}
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	logf("%s %s -> %s", op, inPath, outPath)
	if op == core.EncryptMode {
		err = c.EncryptStream(in, out, closeIn)
		if err == nil {
			reportParams(c)
		}
		return err
	}
	return c.DecryptStream(in, out, closeIn)
}

// reportParams logs the generated parameters a decryption will need.
func reportParams(c *symmetric.Crypto) {
	p := c.Params()
	if p == nil {
		return
	}
	var args []interface{}
	if p.IV != nil && config.IV == "" {
		args = append(args, "iv", hex.EncodeToString(p.IV))
	}
	if p.Salt != nil && config.Salt == "" {
		args = append(args, "salt", hex.EncodeToString(p.Salt), "iterations", p.Iterations)
	}
	if len(args) > 0 {
		logger.Info("generated parameters", args...)
	}
}

func openInput(cmd *cobra.Command, path string) (io.Reader, bool, error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, errors.Wrap(err, "open input")
	}
	return f, true, nil
}

type output struct {
	*bufio.Writer
	f *os.File
}

func (o *output) Close() error {
	var result error
	if err := o.Flush(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "flush output"))
	}
	if o.f != nil {
		if err := o.f.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close output"))
		}
	}
	return result
}

func openOutput(cmd *cobra.Command, path string) (*output, error) {
	if path == "" || path == "-" {
		return &output{Writer: bufio.NewWriter(cmd.OutOrStdout())}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create output")
	}
	return &output{Writer: bufio.NewWriter(f), f: f}, nil
}

func newKeygenCommand() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a base64url-encoded random key",
		Long:  "Generate a random key for the selected cipher, or of the given length in bytes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var key []byte
			var err error
			if length > 0 {
				key = make([]byte, length)
				_, err = io.ReadFull(rand.Reader, key)
			} else {
				key, err = core.GenerateKey(config.Cipher, nil, rand.Reader)
			}
			if err != nil {
				return err
			}
			logf("generated %d-byte key", len(key))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), base64.URLEncoding.EncodeToString(key))
			return err
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 0, "key length in bytes (cipher default if 0)")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available ciphers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range core.ListCipher() {
				bs, err := core.BlockSize(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "%-30s %d\n", name, bs); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
