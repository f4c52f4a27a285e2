// Package toml loads arachne run settings from TOML files.
package toml

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/arachne"
)

// File is the content of a configuration file.
//
//	db = "arachne.db"
//	timeout = "30s"
//
//	[crawl]
//	crawling_concurrency = 4
//	min_request_interval = "500ms"
//
//	[site]
//	include = "/docs/"
//	max_pages = 200
//	extractor = "readability"
type File struct {
	DB        string         `toml:"db"`
	Out       string         `toml:"out"`
	UserAgent string         `toml:"user_agent"`
	Timeout   time.Duration  `toml:"timeout"`
	Bloom     uint           `toml:"bloom"`
	Crawl     arachne.Config `toml:"crawl"`
	Site      Site           `toml:"site"`
}

// Site holds settings for the site spider.
type Site struct {
	Include   string `toml:"include"`
	MaxPages  int    `toml:"max_pages"`
	Extractor string `toml:"extractor"`
}

// DefaultFile returns the settings used for keys a file leaves out.
func DefaultFile() File {
	return File{
		Timeout: 30 * time.Second,
		Crawl:   arachne.DefaultConfig(),
	}
}

// LoadConfig reads path over DefaultFile. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func LoadConfig(path string) (File, error) {
	f := DefaultFile()
	md, err := toml.DecodeFile(path, &f)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, arachne.Errorf(arachne.ENOTFOUND, "config file %s not found", path)
	}
	if err != nil {
		return File{}, arachne.Errorf(arachne.EINVALID, "parse config %s: %v", path, err)
	}
	return f, checkUndecoded(path, md)
}

// Decode parses TOML text over DefaultFile.
func Decode(data string) (File, error) {
	f := DefaultFile()
	md, err := toml.Decode(data, &f)
	if err != nil {
		return File{}, arachne.Errorf(arachne.EINVALID, "parse config: %v", err)
	}
	return f, checkUndecoded("config", md)
}

func checkUndecoded(name string, md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return arachne.Errorf(arachne.EINVALID, "%s: unknown keys: %s", name, strings.Join(keys, ", "))
}
