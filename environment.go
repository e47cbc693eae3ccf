package paysheet

// KeyValue is a string store holding one entry per dataset.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Downloader hands a finished workbook to whoever asked for it.
type Downloader interface {
	Offer(blob []byte, fileName string) error
}

// Environment exposes the host capabilities a Store depends on. A capability
// that is not there reports ErrEnvironmentUnavailable.
type Environment interface {
	Storage() (KeyValue, error)
	Downloads() (Downloader, error)
}

type interactive struct {
	kv KeyValue
	d  Downloader
}

// Interactive is an environment backed by kv. A nil d leaves storage usable
// and makes downloads unavailable.
func Interactive(kv KeyValue, d Downloader) Environment {
	return &interactive{kv: kv, d: d}
}

func (env *interactive) Storage() (KeyValue, error) {
	if env.kv == nil {
		return nil, ErrEnvironmentUnavailable
	}

	return env.kv, nil
}

func (env *interactive) Downloads() (Downloader, error) {
	if env.d == nil {
		return nil, ErrEnvironmentUnavailable
	}

	return env.d, nil
}

type headless struct{}

// Headless is an environment with no capabilities at all.
func Headless() Environment {
	return headless{}
}

func (headless) Storage() (KeyValue, error) {
	return nil, ErrEnvironmentUnavailable
}

func (headless) Downloads() (Downloader, error) {
	return nil, ErrEnvironmentUnavailable
}
