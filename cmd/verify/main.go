package main

import (
	"flag"
	"log"
	"os"

	"oscreplay/binlog"
	"oscreplay/verify"
)

func main() {
	file1 := flag.String("1", "", "Original PCAP")
	file2 := flag.String("2", "", "Replayed PCAP")
	speed := flag.Float64("speed", 1.0, "Speed the replay was played at")
	flag.Parse()

	if *file1 == "" || *file2 == "" {
		log.Fatal("Usage: verify -1 <original> -2 <replayed> [-speed N]")
	}

	orig, err := binlog.ReadBuffer(*file1)
	if err != nil {
		log.Fatalf("Error reading %s: %v", *file1, err)
	}
	replayed, err := binlog.ReadBuffer(*file2)
	if err != nil {
		log.Fatalf("Error reading %s: %v", *file2, err)
	}

	rep := verify.Compare(orig, replayed, *speed)
	rep.Print(os.Stdout)
	if !rep.OK() {
		os.Exit(1)
	}
}
