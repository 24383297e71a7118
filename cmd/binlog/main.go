package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	binlog "github.com/byte8/binlogevent"
)

type config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	Checksum  bool   `env:"BINLOG_CHECKSUM" envDefault:"true"`
	binlog.Options
}

func printUsage() {
	errln("Usage:")
	errln()
	errln("binlog view FILE")
	errln("Arguments:")
	errln("    FILE   binlog file to decode, or - to read a COM_BINLOG_DUMP")
	errln("           packet stream from stdin.")
	errln("Environment:")
	errln("    LOG_LEVEL              defaults to info.")
	errln("    LOG_FORMAT             text or json. defaults to text.")
	errln("    BINLOG_CHECKSUM        whether streamed events carry a CRC32. defaults to true.")
	errln("    BINLOG_ONLY_SCHEMAS    comma separated schema names.")
	errln("    BINLOG_ONLY_TABLES     comma separated table names.")
	errln("    BINLOG_FREEZE_SCHEMA   true or false.")
	errln("Examples:")
	errln("    binlog view /var/lib/mysql/binlog.000002")
	errln("    LOG_LEVEL=trace binlog view - < dump.bin")
}

func main() {
	if len(os.Args) < 3 || os.Args[1] != "view" {
		printUsage()
		os.Exit(1)
	}
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		errln(err)
		os.Exit(1)
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		errln(err)
		os.Exit(1)
	}
	log.SetLevel(level)

	var s binlog.Scanner
	if name := os.Args[2]; name == "-" {
		s = binlog.NewStreamScanner(os.Stdin, cfg.Checksum)
	} else {
		fs, err := binlog.OpenFile(name)
		if err != nil {
			log.WithError(err).Fatal("open binlog file")
		}
		defer fs.Close()
		s = fs
	}

	d := binlog.NewDecoder(binlog.Tables{}, cfg.Options)
	d.Log = log
	if err := view(s, d, os.Stdout); err != nil {
		log.WithError(err).Fatal("view binlog")
	}
}

func view(s binlog.Scanner, d *binlog.Decoder, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		p, err := s.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		e, err := d.Decode(p, p.EventSize())
		if err != nil {
			return err
		}
		if err := enc.Encode(binlog.Dump(e)); err != nil {
			return err
		}
	}
}

func errln(args ...interface{}) {
	_, _ = fmt.Fprintln(os.Stderr, args...)
}
