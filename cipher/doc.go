/*
Package cipher provides the cipher primitives behind go-symcrypt transforms.

Block ciphers (AES, DES, DESede, Blowfish, SM4) are returned as crypto/cipher
Blocks and combined with a chaining mode by the caller. ECB is provided here
since crypto/cipher does not ship it. Keystream modes over a block (CTR, CFB,
OFB) and native stream ciphers (RC4, ChaCha20, XChaCha20, ZUC) share the
Stream interface, which hands out a fresh cipher.Stream per IV. AEAD
constructions return crypto/cipher AEADs.
*/
package cipher
