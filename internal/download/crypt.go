package download

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"kani/internal/httputil"
)

// keyCache fetches and memoizes AES-128 segment keys by URI. Safe for
// concurrent use by the download workers.
type keyCache struct {
	client   *httputil.Client
	useProxy bool

	mu   sync.Mutex
	keys map[string][]byte
}

func newKeyCache(client *httputil.Client, useProxy bool) *keyCache {
	return &keyCache{client: client, useProxy: useProxy, keys: make(map[string][]byte)}
}

func (c *keyCache) get(uri string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.keys[uri]; ok {
		return key, nil
	}
	key, err := c.client.FetchRaw(uri, c.useProxy)
	if err != nil {
		return nil, err
	}
	if len(key) != 16 {
		return nil, fmt.Errorf("key is %d bytes, want 16", len(key))
	}
	c.keys[uri] = key
	return key, nil
}

// decryptSegment decrypts one AES-128-CBC segment. When the playlist
// carries no explicit IV the media sequence number is used, big-endian
// in the low bytes of a zeroed 16-byte block.
func decryptSegment(data, key []byte, ivAttr string, sequence int) ([]byte, error) {
	iv, err := segmentIV(ivAttr, sequence)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("segment length %d is not a block multiple", len(data))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	pad := int(out[len(out)-1])
	if pad > 0 && pad <= aes.BlockSize && pad <= len(out) {
		out = out[:len(out)-pad]
	}
	return out, nil
}

func segmentIV(attr string, sequence int) ([]byte, error) {
	if attr == "" {
		iv := make([]byte, 16)
		binary.BigEndian.PutUint64(iv[8:], uint64(sequence))
		return iv, nil
	}
	s := strings.TrimPrefix(strings.TrimPrefix(attr, "0x"), "0X")
	iv, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parsing IV: %w", err)
	}
	if len(iv) != 16 {
		return nil, fmt.Errorf("IV is %d bytes, want 16", len(iv))
	}
	return iv, nil
}
