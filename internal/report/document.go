package report

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	mt "github.com/txaty/go-merkletree"

	"dupes-go/internal/dedup"
	"dupes-go/internal/hash"
)

const generator = "dupes-go"

// Document is the JSON form of a scan.
type Document struct {
	Generator     string         `json:"generator"`
	Created       time.Time      `json:"created"`
	Root          string         `json:"root"`
	Reference     string         `json:"reference,omitempty"`
	Files         int            `json:"files"`
	Directories   int            `json:"directories"`
	Symlinks      int            `json:"symlinks"`
	TotalSize     int64          `json:"total_size"`
	Size          string         `json:"size"`
	RedundantSize int64          `json:"redundant_size"`
	Fingerprint   string         `json:"fingerprint"`
	Clusters      []ClusterEntry `json:"clusters"`
	Removable     []string       `json:"removable"`
	Errors        []string       `json:"errors,omitempty"`
}

// ClusterEntry is one duplicate cluster. Members are in canonical order.
type ClusterEntry struct {
	Hash    string   `json:"hash"`
	Size    int64    `json:"size"`
	Members []string `json:"members"`
}

// NewDocument builds the JSON document for s.
func NewDocument(s *Scan) (*Document, error) {
	t := s.totals()
	doc := &Document{
		Generator:     generator,
		Created:       time.Now().UTC(),
		Root:          s.Primary.RootPath(),
		Files:         t.files,
		Directories:   t.dirs,
		Symlinks:      t.symlinks,
		TotalSize:     t.size,
		Size:          humanize.IBytes(uint64(t.size)),
		RedundantSize: s.RedundantSize(),
		Clusters:      make([]ClusterEntry, 0, len(s.Clusters)),
		Removable:     make([]string, 0),
	}
	if s.Comparing() {
		doc.Reference = s.Reference.RootPath()
	}

	for _, c := range s.Clusters {
		entry := ClusterEntry{Hash: hash.Format(c.Hash), Size: c.Size}
		for _, m := range c.Members {
			entry.Members = append(entry.Members, m.Path())
		}
		doc.Clusters = append(doc.Clusters, entry)
	}
	for _, n := range s.RemovalTargets() {
		doc.Removable = append(doc.Removable, n.Path())
	}
	for _, err := range s.Errors {
		doc.Errors = append(doc.Errors, err.Error())
	}

	fp, err := Fingerprint(s.Clusters)
	if err != nil {
		return nil, err
	}
	doc.Fingerprint = fp

	return doc, nil
}

// clusterBlock is a merkle leaf: the cluster hash, size and member paths.
type clusterBlock struct {
	c dedup.Cluster
}

func (b clusterBlock) Serialize() ([]byte, error) {
	buf := binary.BigEndian.AppendUint64(nil, b.c.Hash)
	buf = binary.BigEndian.AppendUint64(buf, uint64(b.c.Size))
	for _, m := range b.c.Members {
		buf = append(buf, m.Path()...)
		buf = append(buf, 0)
	}
	return buf, nil
}

// Fingerprint is a merkle root over the clusters in order. Two runs that
// report the same clusters with the same members get the same fingerprint.
func Fingerprint(clusters []dedup.Cluster) (string, error) {
	switch len(clusters) {
	case 0:
		sum, err := hash.XXHashFunc([]byte("no-duplicates"))
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum), nil
	case 1:
		data, err := clusterBlock{clusters[0]}.Serialize()
		if err != nil {
			return "", err
		}
		sum, err := hash.XXHashFunc(data)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum), nil
	}

	blocks := make([]mt.DataBlock, 0, len(clusters))
	for _, c := range clusters {
		blocks = append(blocks, clusterBlock{c})
	}

	tree, err := mt.New(&mt.Config{
		HashFunc: hash.XXHashFunc,
		Mode:     mt.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build cluster merkle tree: %w", err)
	}

	return hex.EncodeToString(tree.Root), nil
}

func marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	data, err := marshal(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Save writes doc to path, creating the parent directory.
func Save(doc *Document, path string) error {
	data, err := marshal(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Load reads a document written by Save.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	if doc.Generator != generator {
		return nil, fmt.Errorf("unexpected generator %q in %s", doc.Generator, path)
	}

	return &doc, nil
}
