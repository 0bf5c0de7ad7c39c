package main

import (
	"flag"

	"github.com/alvarorichard/anirelay/internal/config"
	"github.com/alvarorichard/anirelay/internal/provider"
	"github.com/alvarorichard/anirelay/internal/proxy"
	"github.com/alvarorichard/anirelay/internal/server"
	"github.com/alvarorichard/anirelay/internal/stream"
	"github.com/alvarorichard/anirelay/internal/util"
)

func main() {
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	portFlag := flag.Int("port", 0, "override the configured listen port")
	flag.Parse()

	if err := config.Setup(); err != nil {
		util.SetDebugMode(true)
		util.InitLogger()
		util.Fatal("configuration failed", "err", err)
	}

	cfg := config.Load()
	if *portFlag > 0 {
		cfg.Port = *portFlag
	}

	util.SetDebugMode(*debugFlag || cfg.Debug)
	util.InitLogger()

	client := provider.NewClient(provider.ClientOptions{
		BaseURL:   cfg.UpstreamBaseURL,
		Referer:   cfg.UpstreamReferer,
		UserAgent: cfg.UserAgent,
	})
	adapter := provider.NewAdapter(client, provider.ParseDubPolicy(cfg.DubPolicy))
	aggregator := stream.NewAggregator(adapter)

	proxyHandler := proxy.NewHandler(proxy.HandlerOptions{
		Referer:   cfg.UpstreamReferer,
		UserAgent: cfg.UserAgent,
	})

	srv := server.New(cfg, aggregator, proxyHandler, client)
	if err := srv.Run(); err != nil {
		util.Fatal("server failed", "err", err)
	}
}
