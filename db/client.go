package db

import (
	log "github.com/sirupsen/logrus"
)

// Closer is any client owning connections, e.g. sqldb.Client or kvdb.Client.
type Closer interface {
	Close() error
}

// CloseClient closes c, logging the outcome under name.
func CloseClient(name string, c Closer) {
	if c == nil {
		log.Infof("`%s` Nothing to Close", name)
		return
	}
	if err := c.Close(); err != nil {
		log.Warnf("Failed to Close `%s`: %v", name, err)
	} else {
		log.Infof("`%s` Closed", name)
	}
}
