package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cartbackend/lib/myhttpclient"
	"github.com/MarcGrol/cartbackend/lib/mypublisher"
	"github.com/MarcGrol/cartbackend/lib/mypubsub"
	"github.com/MarcGrol/cartbackend/lib/myqueue"
	"github.com/MarcGrol/cartbackend/lib/mystore"
	"github.com/MarcGrol/cartbackend/lib/mytime"
	"github.com/MarcGrol/cartbackend/lib/myuuid"
	"github.com/MarcGrol/cartbackend/services/cart"
	"github.com/MarcGrol/cartbackend/services/catalog"
	"github.com/MarcGrol/cartbackend/services/warmup"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()
	port := getenv("PORT", "8080")

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, mytime.RealNower{}, myuuid.RealUUIDer{})
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	catalogBaseURL := os.Getenv("CATALOG_BASE_URL")
	if catalogBaseURL == "" {
		// no remote catalog configured: serve our own
		cleanup := startCatalog(c, router.PathPrefix("/catalog").Subrouter())
		defer cleanup()

		catalogBaseURL = fmt.Sprintf("http://localhost:%s/catalog", port)
	}
	catalogClient := catalog.NewHTTPClient(catalogBaseURL, myhttpclient.New())

	snapshotStore, snapshotStoreCleanup, err := mystore.New[cart.Snapshot](c)
	if err != nil {
		log.Fatalf("Error creating snapshot store: %s", err)
	}
	defer snapshotStoreCleanup()

	toastStore, toastStoreCleanup, err := mystore.New[cart.Toasts](c)
	if err != nil {
		log.Fatalf("Error creating notification store: %s", err)
	}
	defer toastStoreCleanup()

	cartService := cart.NewService(snapshotStore, toastStore, catalogClient, publisher, mytime.RealNower{}, myuuid.RealUUIDer{})
	err = cartService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart endpoints: %s", err)
	}

	warmup.NewService(cartService).RegisterEndpoints(c, router)

	startWebServerBlocking(router, port)
}

func startCatalog(c context.Context, router *mux.Router) func() {
	productStore, productStoreCleanup, err := mystore.New[catalog.Product](c)
	if err != nil {
		log.Fatalf("Error creating product store: %s", err)
	}

	stockStore, stockStoreCleanup, err := mystore.New[catalog.Stock](c)
	if err != nil {
		log.Fatalf("Error creating stock store: %s", err)
	}

	catalogService := catalog.NewService(productStore, stockStore)
	err = catalogService.Seed(c)
	if err != nil {
		log.Fatalf("Error seeding catalog: %s", err)
	}
	catalogService.RegisterEndpoints(c, router)

	return func() {
		stockStoreCleanup()
		productStoreCleanup()
	}
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s/api/cart)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}

func getenv(name string, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	return value
}
