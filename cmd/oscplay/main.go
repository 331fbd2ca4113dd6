package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"oscreplay/binlog"
	"oscreplay/config"
	"oscreplay/metrics"
	"oscreplay/oscnet"
	"oscreplay/player"
	"oscreplay/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	pcapPath := flag.String("pcap", "", "Recorded PCAP to play")
	host := flag.String("host", player.DefaultHost, "Destination IP address")
	port := flag.Int("port", player.DefaultPort, "Destination UDP port")
	speed := flag.Float64("speed", player.DefaultSpeed, "Playback speed multiplier")
	loop := flag.Bool("loop", false, "Restart from the beginning when the recording ends")
	interruptible := flag.Bool("interruptible", false, "Let Stop cut an in-flight wait short")
	httpAddr := flag.String("http", "", "HTTP control/status address (e.g. :8080). Empty to disable.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	// Flags win over the config file only when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pcap":
			cfg.Input.Path = *pcapPath
		case "host":
			cfg.Playback.Host = *host
		case "port":
			cfg.Playback.Port = *port
		case "speed":
			cfg.Playback.Speed = *speed
		case "loop":
			cfg.Playback.Loop = *loop
		case "interruptible":
			cfg.Playback.InterruptibleStop = *interruptible
		case "http":
			cfg.HTTP.Addr = *httpAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Input.Path == "" {
		log.Fatal("--pcap required")
	}

	buf, err := binlog.ReadBuffer(cfg.Input.Path)
	if err != nil {
		log.Fatalf("Read %s: %v", cfg.Input.Path, err)
	}
	log.Printf("Loaded %d messages spanning %s from %s", buf.Len(), buf.Duration(), cfg.Input.Path)

	client, err := oscnet.NewClient()
	if err != nil {
		log.Fatalf("Open UDP socket: %v", err)
	}
	defer client.Close()

	p := player.NewPlayer(buf, client)
	if err := p.SetConfig(cfg.Player()); err != nil {
		log.Fatalf("Configure player: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	observers := player.Observers{metrics.NewPlaybackMetrics(reg)}

	if cfg.HTTP.Addr != "" {
		srv := web.NewServer(ctx, p, reg)
		observers = append(observers, srv.Hub)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
				log.Fatalf("HTTP server error: %v", err)
			}
		}()
	}
	p.SetObserver(observers)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		p.Stop()
	}()

	if err := p.Play(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Playback failed: %v", err)
		os.Exit(1)
	}

	st := p.Status()
	log.Printf("Done. Sent %d messages (%d failed).", st.Sent, st.Failed)

	// With the control API enabled, stay up for further /play requests.
	if cfg.HTTP.Addr != "" && ctx.Err() == nil {
		<-ctx.Done()
	}
}
