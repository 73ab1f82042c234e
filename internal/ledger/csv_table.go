package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/khanglvm/reco-hub/internal/logging"
)

// Store column names, shared by the CSV file and exports.
const (
	ColUser     = "MUDID"
	ColProduct  = "Product_ID"
	ColFeedback = "Feedback"
)

// Header is the CSV header of the store and of exports.
var Header = []string{ColUser, ColProduct, ColFeedback}

// CSVTable stores the ledger as a whole CSV file.
type CSVTable struct {
	path string
}

// NewCSVTable creates a CSV-backed table at path. The file is created on the
// first Save.
func NewCSVTable(path string) *CSVTable {
	return &CSVTable{path: path}
}

// Path returns the backing file path.
func (t *CSVTable) Path() string {
	return t.path
}

// Load reads every row. A missing file is an empty table.
func (t *CSVTable) Load() ([]Entry, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", t.path, err)
	}
	defer f.Close()

	entries, err := decodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.path, err)
	}
	return entries, nil
}

// Save replaces the file with entries. The new content goes to a temp file
// that is renamed over the old one while holding an exclusive lock on
// <path>.lock.
func (t *CSVTable) Save(entries []Entry) error {
	var buf bytes.Buffer
	if err := encodeCSV(&buf, entries); err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	lock, err := acquireFileLock(t.path)
	if err != nil {
		return err
	}
	defer releaseFileLock(lock)

	return atomicWrite(t.path, buf.Bytes())
}

// acquireFileLock blocks until it holds an exclusive lock on path + ".lock".
// The lock file is left in place so concurrent writers agree on the inode.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", lockPath, err)
	}

	return lockFile, nil
}

func releaseFileLock(lockFile *os.File) {
	if lockFile == nil {
		return
	}
	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func encodeCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.UserID, e.ProductID, strconv.Itoa(int(e.Vote))}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	idx := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range Header {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	entries := []Entry{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		e, err := decodeRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if e.Vote != Like && e.Vote != Dislike {
			logging.Warn().
				Int("line", line).
				Str("user", e.UserID).
				Str("product", e.ProductID).
				Int("feedback", int(e.Vote)).
				Msg("dropping feedback row with invalid value")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeRecord(rec []string, idx map[string]int) (Entry, error) {
	field := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	vote, err := parseFeedback(field(ColFeedback))
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		UserID:    field(ColUser),
		ProductID: field(ColProduct),
		Vote:      vote,
	}, nil
}

// parseFeedback accepts integers and integral floats such as "1.0".
func parseFeedback(s string) (Vote, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return Vote(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return None, fmt.Errorf("unparsable feedback %q", s)
	}
	if math.Abs(f) > math.MaxInt32 {
		// still not a valid vote; the caller drops it
		return Vote(math.MaxInt32), nil
	}
	return Vote(int(f)), nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
