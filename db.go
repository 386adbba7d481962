package eventex

// Database is implemented by flash store backends that hold a connection
type Database interface {
	Open() error
	Close() error
}
