// Package aescbc encrypts contact fields at rest: AES-CBC with PKCS#7 padding,
// stored as base64(IV || ciphertext).
package aescbc

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

var ErrMalformed = errors.New("malformed ciphertext")

type Cipher struct {
	block cipher.Block
}

// New accepts a 16, 24 or 32 byte key (AES-128/192/256).
func New(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes key")
	}
	return &Cipher{block: block}, nil
}

func (c *Cipher) Encrypt(plain string) (string, error) {
	bs := c.block.BlockSize()
	padded := pad([]byte(plain), bs)

	out := make([]byte, bs+len(padded))
	iv := out[:bs]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", errors.Wrap(err, "read iv")
	}
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[bs:], padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(ErrMalformed, err.Error())
	}
	bs := c.block.BlockSize()
	if len(raw) < 2*bs || len(raw)%bs != 0 {
		return "", ErrMalformed
	}

	iv, body := raw[:bs], raw[bs:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, body)

	plain, err = unpad(plain, bs)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, bs int) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrMalformed
	}
	n := int(b[len(b)-1])
	if n == 0 || n > bs || n > len(b) {
		return nil, ErrMalformed
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, ErrMalformed
		}
	}
	return b[:len(b)-n], nil
}
