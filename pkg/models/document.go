// Package models defines the canonical document schema written to the
// records collection and the source-file descriptors consumed by the pipeline.
package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchemaVersion is stamped into every document so later schema migrations can
// tell generations apart.
const SchemaVersion = 1

// Document is the unified record stored for every retail transaction,
// regardless of which CSV extract it came from.
type Document struct {
	DedupKey      string    `bson:"dedupKey"`
	SchemaVersion int       `bson:"schemaVersion"`
	Source        Source    `bson:"source"`
	IngestedAt    time.Time `bson:"ingestedAt"`
	EventTime     time.Time `bson:"eventTime"`
	Entity        Entity    `bson:"entity"`
	Metrics       Metrics   `bson:"metrics"`
	Metadata      Metadata  `bson:"metadata"`
}

// Source identifies where a document originated.
type Source struct {
	Name       string `bson:"name"`
	Type       string `bson:"type"`
	SourceID   string `bson:"sourceId"`
	ExternalID string `bson:"externalId"`
}

// Entity is the business entity a transaction belongs to. ID is nil for
// anonymous transactions (no customer on the invoice).
type Entity struct {
	ID   *string `bson:"id"`
	Type string  `bson:"type"`
}

// Metrics holds the numeric facts of a transaction. Amounts are Decimal128 so
// money never round-trips through binary floats. Negative values are valid and
// represent returns or cancellations.
type Metrics struct {
	Amount    primitive.Decimal128 `bson:"amount"`
	Count     int64                `bson:"count"`
	UnitPrice primitive.Decimal128 `bson:"unitPrice"`
}

type Metadata struct {
	Description string `bson:"description"`
	StockCode   string `bson:"stockCode"`
	Country     string `bson:"country"`
}

// ComputeDedupKey derives the upsert key from the identifying fields of a row.
// The key is a pure function of its inputs: the same row hashes to the same
// key on every run, which is what makes reloads idempotent. A nil entity ID
// hashes as the empty string so anonymous orders keep a stable key too.
func ComputeDedupKey(externalID, stockCode string, entityID *string) string {
	h := xxhash.New()
	h.WriteString(externalID)
	h.Write([]byte{'|'})
	h.WriteString(stockCode)
	h.Write([]byte{'|'})
	if entityID != nil {
		h.WriteString(*entityID)
	}
	// Fixed-width hex keeps keys lexicographically comparable in the index.
	s := strconv.FormatUint(h.Sum64(), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// SourceFile describes one CSV extract in the sources file. Order in the file
// is processing order.
type SourceFile struct {
	SourceID    string `json:"sourceId"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// SourcesConfig is the root of the configs/sources.json file.
type SourcesConfig struct {
	Version int          `json:"version"`
	Sources []SourceFile `json:"sources"`
}

func LoadSources(data []byte) (*SourcesConfig, error) {
	var c SourcesConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
