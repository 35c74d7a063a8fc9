package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/escrowmarket/marketd/internal/core/domain"
	"github.com/escrowmarket/marketd/internal/core/ports"
)

// DbManager holds all the badgerhold stores in a single data structure.
type DbManager struct {
	ListingStore *badgerhold.Store
	SaleStore    *badgerhold.Store

	listingRepository domain.ListingRepository
	saleRepository    domain.SaleRepository
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// It expects a base data dir and an optional logger and creates a dedicated
// directory for listings and sales.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	listingDb, err := createDb(filepath.Join(baseDbDir, "listings"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening listings db: %w", err)
	}

	saleDb, err := createDb(filepath.Join(baseDbDir, "sales"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening sales db: %w", err)
	}

	db := &DbManager{
		ListingStore: listingDb,
		SaleStore:    saleDb,
	}
	db.listingRepository = NewListingRepositoryImpl(db)
	db.saleRepository = NewSaleRepositoryImpl(db)

	return db, nil
}

func (d *DbManager) ListingRepository() domain.ListingRepository {
	return d.listingRepository
}

func (d *DbManager) SaleRepository() domain.SaleRepository {
	return d.saleRepository
}

// Close closes all the managed stores.
func (d *DbManager) Close() {
	d.ListingStore.Close()
	d.SaleStore.Close()
}

// JSONEncode is a custom JSON based encoder for badger.
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)
	if err := en.Encode(value); err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger.
func JSONDecode(data []byte, value interface{}) error {
	de := json.NewDecoder(bytes.NewReader(data))
	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
