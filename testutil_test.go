package cradle_test

import (
	"sync"
)

// Shared test types. Constructors with call counting are built per-test as
// closures so counts never leak between tests.

type tConfig struct {
	DSN string
}

type tDatabase struct {
	Config *tConfig
	ID     int
}

type tRepository struct {
	DB *tDatabase
}

type tService struct {
	Repo *tRepository
}

type tGreeter interface {
	Greet() string
}

type tEnglishGreeter struct{}

func (g *tEnglishGreeter) Greet() string { return "hello" }

type tSpanishGreeter struct{}

func (g *tSpanishGreeter) Greet() string { return "hola" }

// tDisposable records its Close calls into a shared log so tests can assert
// disposal order.
type tDisposable struct {
	name     string
	closeErr error

	mu  *sync.Mutex
	log *[]string
}

func newTDisposable(name string, log *[]string, mu *sync.Mutex) *tDisposable {
	return &tDisposable{name: name, log: log, mu: mu}
}

func (d *tDisposable) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	*d.log = append(*d.log, d.name)
	return d.closeErr
}
