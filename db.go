package mailroom

type Database interface {
	Open() error
	Close() error
}
