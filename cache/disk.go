package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chazu/hlang/compiler"
	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is bumped whenever the token encoding changes. Files written
// with another version are ignored.
const FormatVersion = 1

// KeySize is the length of a cache key.
const KeySize = sha256.Size

// Key identifies a tokenized source.
type Key [KeySize]byte

// NewKey hashes src together with the tab width used to tokenize it.
func NewKey(src string, tabWidth int) Key {
	h := sha256.New()
	var tw [8]byte
	binary.BigEndian.PutUint64(tw[:], uint64(tabWidth))
	h.Write(tw[:])
	h.Write([]byte(src))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type tokenFile struct {
	Version int         `cbor:"1,keyasint"`
	Tokens  []wireToken `cbor:"2,keyasint"`
}

type wireToken struct {
	Type   int     `cbor:"1,keyasint"`
	Lexeme string  `cbor:"2,keyasint,omitempty"`
	Number float64 `cbor:"3,keyasint,omitempty"`
	Text   string  `cbor:"4,keyasint,omitempty"`
	Line   int     `cbor:"5,keyasint"`
}

func toWire(tokens []compiler.Token) []wireToken {
	out := make([]wireToken, len(tokens))
	for i, tok := range tokens {
		w := wireToken{Type: int(tok.Type), Lexeme: tok.Lexeme, Line: tok.Line}
		switch lit := tok.Literal.(type) {
		case float64:
			w.Number = lit
		case string:
			w.Text = lit
		}
		out[i] = w
	}
	return out
}

func fromWire(ws []wireToken) []compiler.Token {
	out := make([]compiler.Token, len(ws))
	for i, w := range ws {
		tok := compiler.Token{Type: compiler.TokenType(w.Type), Lexeme: w.Lexeme, Line: w.Line}
		switch tok.Type {
		case compiler.TokenNumber:
			tok.Literal = w.Number
		case compiler.TokenString:
			tok.Literal = w.Text
		}
		out[i] = tok
	}
	return out
}

// MarshalTokens serializes tokens to canonical CBOR.
func MarshalTokens(tokens []compiler.Token) ([]byte, error) {
	return cborEncMode.Marshal(tokenFile{Version: FormatVersion, Tokens: toWire(tokens)})
}

// UnmarshalTokens decodes data written by MarshalTokens. ok is false when the
// data was written by another format version.
func UnmarshalTokens(data []byte) (tokens []compiler.Token, ok bool, err error) {
	var f tokenFile
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal tokens: %w", err)
	}
	if f.Version != FormatVersion {
		return nil, false, nil
	}
	return fromWire(f.Tokens), true, nil
}

// DiskStore persists token streams under Dir, one file per key.
type DiskStore struct {
	Dir string
}

// NewDiskStore returns a store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{Dir: dir}
}

func (d *DiskStore) path(k Key) string {
	s := k.String()
	return filepath.Join(d.Dir, s[:2], s+".cbor")
}

// Load returns the tokens stored for k. A missing file or a file of another
// format version is a miss, not an error.
func (d *DiskStore) Load(k Key) ([]compiler.Token, bool, error) {
	data, err := os.ReadFile(d.path(k))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return UnmarshalTokens(data)
}

// Save writes tokens for k, replacing any previous entry atomically.
func (d *DiskStore) Save(k Key, tokens []compiler.Token) error {
	data, err := MarshalTokens(tokens)
	if err != nil {
		return err
	}

	path := d.path(k)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cache: creating %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
