package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"oscreplay/binlog"
	"oscreplay/oscnet"
)

func main() {
	port := flag.Int("port", 8000, "UDP port to listen on")
	out := flag.String("out", "", "Output PCAP file or directory")
	flag.Parse()

	if *out == "" {
		log.Fatal("--out required")
	}

	// Auto-generate name if directory
	path := *out
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, fmt.Sprintf("OSC_%s.pcap", time.Now().Format("20060102150405")))
	}

	pw, err := binlog.Create(path)
	if err != nil {
		log.Fatalf("Failed to create pcap writer: %v", err)
	}
	defer pw.Close()

	l, err := oscnet.NewListener(fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	var count atomic.Int64
	go l.Serve(func(data []byte, addr *net.UDPAddr, at time.Time) {
		if err := pw.WritePacketAt(at, binlog.FlagPacket, addr, data); err != nil {
			log.Printf("Write packet: %v", err)
			return
		}
		if n := count.Add(1); n%1000 == 0 {
			log.Printf("Recorded %d packets", n)
		}
	})
	log.Printf("Recording to %s", path)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	l.Stop()
	log.Printf("Recorded %d packets to %s", count.Load(), path)
}
