// Package subs implements subtitle payload handling: decryption of
// the legacy encrypted scripts, rendering to ASS, language
// normalization, filtering and font extraction.
package subs

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
)

// encryptedScript is the payload returned by the legacy subtitle RPC.
type encryptedScript struct {
	XMLName xml.Name `xml:"subtitle"`
	IV      string   `xml:"iv"`
	Data    string   `xml:"data"`
}

// Decrypt decodes a legacy encrypted subtitle payload. The key is
// derived from the subtitle script id, the body is AES-256-CBC under
// that key, and the plaintext is zlib-compressed script XML.
func Decrypt(id int, payload []byte) ([]byte, error) {
	var enc encryptedScript
	if err := xml.Unmarshal(payload, &enc); err != nil {
		return nil, fmt.Errorf("parsing encrypted payload: %w", err)
	}

	iv, err := base64.StdEncoding.DecodeString(enc.IV)
	if err != nil {
		return nil, fmt.Errorf("decoding iv: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(enc.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	if len(iv) != aes.BlockSize || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("bad payload geometry: iv=%d data=%d", len(iv), len(data))
	}

	block, err := aes.NewCipher(deriveKey(id))
	if err != nil {
		return nil, err
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	zr, err := zlib.NewReader(bytes.NewReader(plain))
	if err != nil {
		return nil, fmt.Errorf("inflating script: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflating script: %w", err)
	}
	return out, nil
}

// deriveKey obfuscates the script id into a 256-bit AES key: a
// Fibonacci-derived printable prefix concatenated with a mixed id is
// SHA-1 hashed, then zero-extended to 32 bytes.
func deriveKey(id int) []byte {
	magic := int(math.Floor(math.Pow(2, 25) * math.Sqrt(6.9)))
	mixed := id ^ magic
	mixed = mixed ^ (mixed >> 3) ^ ((magic ^ id) << 5)

	seed := append(fibonacciPrefix(20, 97), []byte(strconv.Itoa(mixed))...)
	sum := sha1.Sum(seed)

	key := make([]byte, 32)
	copy(key, sum[:])
	return key
}

func fibonacciPrefix(count, modulo int) []byte {
	seq := []int{1, 2}
	for i := 0; i < count; i++ {
		seq = append(seq, seq[len(seq)-1]+seq[len(seq)-2])
	}
	seq = seq[2:]

	out := make([]byte, len(seq))
	for i, n := range seq {
		out[i] = byte(n%modulo + 33)
	}
	return out
}
