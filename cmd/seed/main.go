// Command seed loads the starter catalogue into the configured store.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Kariqs/goutam-store/initializers"
)

func main() {
	force := flag.Bool("force", false, "add the starter products even when the catalogue is not empty")
	flag.Parse()

	cfg := initializers.LoadEnv()
	logger := initializers.NewLogger(cfg, os.Stdout)

	ctx := context.Background()
	st, err := initializers.ConnectStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to the store: ", err)
	}
	defer st.Close(ctx)

	n, err := initializers.SeedProducts(ctx, st, !*force)
	if err != nil {
		log.Fatal("Seeding failed: ", err)
	}
	if n == 0 {
		logger.Info("catalogue already has products, nothing seeded")
		return
	}
	logger.Info("seeded starter products", "count", n)
}
