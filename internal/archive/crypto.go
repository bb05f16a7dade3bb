package archive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

var errShortCiphertext = errors.New("archive: ciphertext shorter than nonce")

const (
	saltSize     = 16
	nonceSize    = 12
	pbkdf2KeyLen = 32 // AES-256
)

// pbkdf2Iterations is the PBKDF2-HMAC-SHA256 stretching cost applied to
// every password this process derives keys from. It defaults to a
// conservative cost and is configurable via SetPBKDF2Iterations (wired
// to ZIPLOCK_PBKDF2_ITERATIONS by internal/config), since archives this
// process creates and later reopens must agree on the cost used.
var pbkdf2Iterations = 200_000

// SetPBKDF2Iterations overrides the PBKDF2 iteration count for all
// subsequent Encode/Decode calls in this process. n must be positive;
// non-positive values are ignored.
func SetPBKDF2Iterations(n int) {
	if n > 0 {
		pbkdf2Iterations = n
	}
}

// keyMaterial holds the two independent keys derived from a single
// password: one for the header verifier, one for the payload (the
// packed entry table with its names and data). Deriving two keys from one PBKDF2 master key via HKDF (rather
// than running PBKDF2 twice) keeps the expensive stretching step to a
// single pass, the way fleetd's Vault derives one AES key from PBKDF2
// and reuses it — generalized here into two purpose-separated keys.
type keyMaterial struct {
	headerKey  [32]byte
	payloadKey [32]byte
}

// deriveKeys stretches password with PBKDF2-HMAC-SHA256 over salt, then
// splits the result into a header key and a payload key via HKDF so a
// compromise of one context's ciphertext can't be leveraged against the
// other.
func deriveKeys(password, salt []byte) (*keyMaterial, error) {
	master := pbkdf2.Key(password, salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	defer zero(master)

	km := &keyMaterial{}
	hk := hkdf.New(sha256.New, master, salt, []byte("ziplock-archive-header"))
	if _, err := io.ReadFull(hk, km.headerKey[:]); err != nil {
		return nil, err
	}
	pk := hkdf.New(sha256.New, master, salt, []byte("ziplock-archive-payload"))
	if _, err := io.ReadFull(pk, km.payloadKey[:]); err != nil {
		return nil, err
	}
	return km, nil
}

func (km *keyMaterial) zero() {
	zero(km.headerKey[:])
	zero(km.payloadKey[:])
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// aesGCMEncrypt encrypts plaintext with key, authenticating aad, and
// returns nonce||ciphertext.
func aesGCMEncrypt(key, plaintext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

// aesGCMDecrypt reverses aesGCMEncrypt. A non-nil error here means
// either the key is wrong or the ciphertext/aad was tampered with or
// corrupted; callers distinguish those cases using the header verifier,
// not this function's error alone.
func aesGCMDecrypt(key, sealed, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errShortCiphertext
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, aad)
}
