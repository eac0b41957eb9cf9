package kvdb

import (
	"fmt"
	"net"
	"strconv"
)

type Conf struct {
	Type string `json:"type" yaml:"type"`
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	PW   string `json:"pw" yaml:"pw"`
	// optional db number e.g. redis
	DB int `json:"db" yaml:"db"`
}

func (c *Conf) Addr() string {
	host, port := c.Host, c.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 6379
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (c *Conf) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("kvdb type is required")
	}
	return nil
}
