package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"time"

	influx "github.com/AxiomExergy/influx-client"
)

func main() {
	serverURL := flag.String("url", "http://localhost:8086", "InfluxDB server URL")
	database := flag.String("database", "influx_client_demo", "database to write into")
	measurementName := flag.String("measurementName", fmt.Sprintf("sensor_%d", time.Now().UnixNano()), "writer measure destination")
	threadsCount := flag.Int("threadsCount", 4, "how many goroutines write points")
	pointsCount := flag.Int("pointsCount", 100, "how many points each goroutine writes")
	dropAfter := flag.Bool("drop", false, "drop the database when done")
	debugLevel := flag.Int("debugLevel", 0, "Log messages level: 0 - error, 1 - warning, 2 - info, 3 - debug")
	flag.Parse()

	fmt.Println("url:         ", *serverURL)
	fmt.Println("database:    ", *database)
	fmt.Println("measurement: ", *measurementName)
	fmt.Println("expected size:", (*threadsCount)*(*pointsCount))
	fmt.Println()

	options := influx.DefaultOptions()
	options.Debug = uint(*debugLevel)
	registry := influx.NewRegistryWithOptions(*options)

	client, err := registry.GetClient(*serverURL)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	if ok, err := client.Ping(ctx); err != nil || !ok {
		panic(fmt.Sprintf("server at %s is not ready: %v", *serverURL, err))
	}

	var wg sync.WaitGroup
	wg.Add(*threadsCount)
	start := time.Now()

	for id := 1; id <= *threadsCount; id++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < *pointsCount; i++ {
				err := client.Write(ctx, *database, *measurementName,
					map[string]interface{}{
						"temperature": 20.0 + float64(i%10),
						"iteration":   i,
						"online":      true,
					},
					map[string]string{"id": fmt.Sprintf("writer_%d", id)},
					time.Now())
				if err != nil {
					fmt.Printf("write error: %v\n", err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	fmt.Println("Total time:", time.Since(start))

	if *dropAfter {
		if err := client.DropDatabase(ctx, *database); err != nil {
			panic(err)
		}
		fmt.Printf("dropped database %q\n", *database)
	}
}
