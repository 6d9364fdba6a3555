package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashFiles hashes the contents of a document followed by its assets, in
// the order given. Each file is labeled with its length-prefixed name so
// that moving bytes between files changes the digest. The document is
// labeled by its base name and assets by their path relative to the
// document, so a deck tree that is moved as a whole keeps its hash.
// Unreadable assets contribute only their label: a missing stylesheet is
// part of the input too.
func HashFiles(document string, assets []string) (string, error) {
	h := sha256.New()
	if err := hashFile(h, filepath.Base(document), document); err != nil {
		return "", err
	}
	dir := filepath.Dir(document)
	for _, a := range assets {
		label, err := filepath.Rel(dir, a)
		if err != nil {
			label = a
		}
		_ = hashFile(h, filepath.ToSlash(label), a)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, label, path string) error {
	fmt.Fprintf(w, "%d:%s:", len(label), label)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
