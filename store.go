package paysheet

import (
	"log/slog"

	"github.com/denismitr/paysheet/internal/transcode"
	"github.com/denismitr/paysheet/internal/xlsx"
	"github.com/pkg/errors"
)

// Store owns one payment dataset persisted as a base64 encoded workbook under
// a single key. Nothing is cached between calls: the persisted text is read
// and decoded on every operation.
type Store struct {
	env Environment
	cfg *Config
	log *slog.Logger
}

func New(env Environment, cfgs ...*Config) *Store {
	cfg := resolveConfig(cfgs)

	return &Store{
		env: env,
		cfg: cfg,
		log: cfg.Logger.With(slog.String("key", cfg.StorageKey)),
	}
}

func (s *Store) FileName() string {
	return s.cfg.FileName
}

func (s *Store) StorageKey() string {
	return s.cfg.StorageKey
}

// Initialize persists a header-only dataset unless something is already
// stored under the key. Existing content is never inspected.
func (s *Store) Initialize() {
	kv, ok := s.storage("initialize")
	if !ok {
		return
	}

	s.initialize(kv)
}

func (s *Store) initialize(kv KeyValue) {
	_, exists, err := kv.Get(s.cfg.StorageKey)
	if err != nil {
		s.log.Error("could not check for an existing dataset", slog.Any("error", err))
		return
	}

	if exists {
		return
	}

	if _, err := s.save(kv, newDatasetSheet(s.cfg.SheetName)); err != nil {
		s.log.Error("could not initialize dataset", slog.Any("error", err))
		return
	}

	s.log.Debug("dataset initialized")
}

// Append adds rec as the last row and returns the re-encoded workbook. When
// the stored content cannot be decoded the append is aborted and the stored
// text is left as it was.
func (s *Store) Append(rec PaymentRecord) ([]byte, error) {
	kv, ok := s.storage("append")
	if !ok {
		return nil, nil
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	sheet, err := s.load(kv)
	if err != nil {
		s.log.Error("append aborted", slog.Any("error", err))
		return nil, err
	}

	if sheet.Len() == 0 {
		sheet = newDatasetSheet(s.cfg.SheetName)
	}

	sheet.Append(rec.row())

	b, err := s.save(kv, sheet)
	if err != nil {
		s.log.Error("append aborted", slog.Any("error", err))
		return nil, err
	}

	s.log.Info("payment appended", slog.Int("rows", sheet.Len()-1))

	if s.cfg.AutoExport {
		s.offer(b)
	}

	return b, nil
}

// List returns the data rows in insertion order. It never fails: an absent or
// undecodable dataset lists as empty.
func (s *Store) List() []PaymentRecord {
	kv, ok := s.storage("list")
	if !ok {
		return []PaymentRecord{}
	}

	sheet, err := s.load(kv)
	if err != nil {
		s.log.Warn("dataset could not be read, listing nothing", slog.Any("error", err))
		return []PaymentRecord{}
	}

	if sheet.Len() < 2 {
		return []PaymentRecord{}
	}

	records := make([]PaymentRecord, 0, sheet.Len()-1)
	for _, row := range sheet.Rows[1:] {
		records = append(records, recordFromRow(row))
	}

	return records
}

// Clear drops every row by removing the stored entry and seeding a fresh
// header-only dataset.
func (s *Store) Clear() {
	kv, ok := s.storage("clear")
	if !ok {
		return
	}

	if err := kv.Remove(s.cfg.StorageKey); err != nil {
		s.log.Error("could not remove dataset", slog.Any("error", err))
	}

	s.initialize(kv)
}

// Workbook returns the stored workbook once it has been checked to decode.
func (s *Store) Workbook() ([]byte, error) {
	kv, ok := s.storage("workbook")
	if !ok {
		return nil, ErrNoData
	}

	return s.workbook(kv)
}

func (s *Store) workbook(kv KeyValue) ([]byte, error) {
	b, exists, err := s.fetch(kv)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, ErrNoData
	}

	if _, err := xlsx.Decode(b, s.cfg.SheetName); err != nil {
		return nil, err
	}

	return b, nil
}

// Export offers the stored workbook to the environment's downloader.
func (s *Store) Export() error {
	d, err := s.env.Downloads()
	if err != nil {
		s.log.Debug("export skipped", slog.Any("error", err))
		return nil
	}

	return s.ExportTo(d)
}

// ExportTo offers the stored workbook to d.
func (s *Store) ExportTo(d Downloader) error {
	kv, ok := s.storage("export")
	if !ok {
		return nil
	}

	b, err := s.workbook(kv)
	if err != nil {
		return err
	}

	if err := d.Offer(b, s.cfg.FileName); err != nil {
		return errors.Wrapf(err, "could not offer %s", s.cfg.FileName)
	}

	return nil
}

func (s *Store) storage(op string) (KeyValue, bool) {
	kv, err := s.env.Storage()
	if err != nil {
		s.log.Debug("operation skipped", slog.String("op", op), slog.Any("error", err))
		return nil, false
	}

	return kv, true
}

// fetch returns the stored workbook bytes and whether anything is stored.
func (s *Store) fetch(kv KeyValue) ([]byte, bool, error) {
	text, exists, err := kv.Get(s.cfg.StorageKey)
	if err != nil {
		return nil, false, errors.Wrapf(err, "could not read dataset %s", s.cfg.StorageKey)
	}

	if !exists {
		return nil, false, nil
	}

	b, err := transcode.FromText(text)
	if err != nil {
		return nil, true, err
	}

	return b, true, nil
}

// load decodes the stored dataset. A missing entry yields a fresh header-only sheet.
func (s *Store) load(kv KeyValue) (xlsx.Sheet, error) {
	b, exists, err := s.fetch(kv)
	if err != nil {
		return xlsx.Sheet{}, err
	}

	if !exists {
		return newDatasetSheet(s.cfg.SheetName), nil
	}

	return xlsx.Decode(b, s.cfg.SheetName)
}

func (s *Store) save(kv KeyValue, sheet xlsx.Sheet) ([]byte, error) {
	b, err := xlsx.Encode(sheet)
	if err != nil {
		return nil, err
	}

	if err := kv.Set(s.cfg.StorageKey, transcode.ToText(b)); err != nil {
		return nil, errors.Wrapf(err, "could not persist dataset %s", s.cfg.StorageKey)
	}

	return b, nil
}

func (s *Store) offer(b []byte) {
	d, err := s.env.Downloads()
	if err != nil {
		s.log.Debug("auto export skipped", slog.Any("error", err))
		return
	}

	if err := d.Offer(b, s.cfg.FileName); err != nil {
		s.log.Error("auto export failed", slog.Any("error", err))
	}
}
