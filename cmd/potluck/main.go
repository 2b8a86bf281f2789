package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/potluck-app/potluck/internal/client"
	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/internal/guest"
	"github.com/potluck-app/potluck/internal/item"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("POTLUCK_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	sessionPath, err := client.DefaultSessionPath()
	if err != nil {
		log.Fatalf("Failed to locate session file: %v", err)
	}
	sessions, err := client.NewSessionStore(sessionPath)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}

	gw := client.NewGateway(baseURL)
	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		runCreate(ctx, gw, sessions, os.Args[2:])
	case "rsvp":
		runRsvp(ctx, gw, sessions, os.Args[2:])
	case "show":
		runShow(ctx, gw, sessions, os.Args[2:])
	case "bring":
		runBring(ctx, gw, sessions, os.Args[2:])
	case "watch":
		runWatch(ctx, gw, sessions, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: potluck <command> [flags]

Commands:
  create  Create a dinner and print its share code
  rsvp    Join a dinner by share code
  show    Print a dinner's guests, categories, and items
  bring   Add an item to a dinner you have joined
  watch   Follow a dinner and print live updates`)
}

func runCreate(ctx context.Context, gw *client.Gateway, sessions *client.SessionStore, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "dinner title")
	dateTime := fs.String("at", "", "date and time (RFC 3339)")
	location := fs.String("location", "", "where the dinner happens")
	hostName := fs.String("name", "", "your name")
	hostPhone := fs.String("phone", "", "your phone number")
	description := fs.String("description", "", "optional description")
	fs.Parse(args)

	req := dinner.CreateDinnerRequest{
		Title:     *title,
		DateTime:  *dateTime,
		Location:  *location,
		HostName:  *hostName,
		HostPhone: *hostPhone,
	}
	if *description != "" {
		req.Description = description
	}

	created, err := gw.CreateDinner(ctx, req)
	if err != nil {
		log.Fatalf("Failed to create dinner: %v", err)
	}

	if err := sessions.Set(created.Dinner.ShareCode, created.SessionToken); err != nil {
		log.Fatalf("Failed to save session: %v", err)
	}

	fmt.Printf("Created %q\n", created.Dinner.Title)
	fmt.Printf("Share code: %s\n", created.Dinner.ShareCode)
}

func runRsvp(ctx context.Context, gw *client.Gateway, sessions *client.SessionStore, args []string) {
	fs := flag.NewFlagSet("rsvp", flag.ExitOnError)
	name := fs.String("name", "", "your name")
	phone := fs.String("phone", "", "your phone number")
	fs.Parse(args)

	shareCode := fs.Arg(0)
	if shareCode == "" {
		log.Fatal("Usage: potluck rsvp -name NAME -phone PHONE CODE")
	}

	if token, ok := sessions.Get(shareCode); ok {
		if me, err := gw.Me(ctx, shareCode, token); err == nil {
			fmt.Printf("Already joined as %s\n", me.Name)
			return
		}
	}

	joined, err := gw.Rsvp(ctx, shareCode, guest.RsvpRequest{Name: *name, Phone: *phone})
	if err != nil {
		log.Fatalf("Failed to RSVP: %v", err)
	}

	if err := sessions.Set(shareCode, joined.SessionToken); err != nil {
		log.Fatalf("Failed to save session: %v", err)
	}

	fmt.Printf("Joined as %s\n", joined.Guest.Name)
}

func runShow(ctx context.Context, gw *client.Gateway, sessions *client.SessionStore, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: potluck show CODE")
	}
	shareCode := args[0]

	page := client.NewEventPage(gw, sessions, shareCode)
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		log.Fatalf("Failed to load dinner: %v", err)
	}
	if page.State() == client.StateNotFound {
		log.Fatalf("No dinner with share code %q", shareCode)
	}

	printSnapshot(page.Snapshot())
}

func runBring(ctx context.Context, gw *client.Gateway, sessions *client.SessionStore, args []string) {
	fs := flag.NewFlagSet("bring", flag.ExitOnError)
	name := fs.String("name", "", "item name")
	description := fs.String("description", "", "optional description")
	categoryID := fs.String("category", "", "optional category id")
	tags := fs.String("tags", "", "comma-separated dietary tags")
	fs.Parse(args)

	shareCode := fs.Arg(0)
	if shareCode == "" {
		log.Fatal("Usage: potluck bring -name NAME [flags] CODE")
	}

	token, ok := sessions.Get(shareCode)
	if !ok {
		log.Fatal("RSVP to this dinner first: potluck rsvp")
	}

	req := item.ItemRequest{Name: *name}
	if *description != "" {
		req.Description = description
	}
	if *categoryID != "" {
		req.CategoryID = categoryID
	}
	if *tags != "" {
		for _, tag := range strings.Split(*tags, ",") {
			req.DietaryTags = append(req.DietaryTags, strings.TrimSpace(tag))
		}
	}

	added, err := gw.AddItem(ctx, shareCode, token, req)
	if err != nil {
		log.Fatalf("Failed to add item: %v", err)
	}

	fmt.Printf("Bringing %s\n", added.Name)
}

func runWatch(ctx context.Context, gw *client.Gateway, sessions *client.SessionStore, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: potluck watch CODE")
	}
	shareCode := args[0]

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	page := client.NewEventPage(gw, sessions, shareCode)
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		log.Fatalf("Failed to load dinner: %v", err)
	}
	if page.State() == client.StateNotFound {
		log.Fatalf("No dinner with share code %q", shareCode)
	}

	printSnapshot(page.Snapshot())
	fmt.Println("Watching for changes; press Ctrl-C to stop.")

	if err := page.Watch(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Subscription failed: %v", err)
	}
}

func printSnapshot(snap client.Snapshot) {
	d := snap.Dinner
	fmt.Printf("%s at %s, %s\n", d.Title, d.DateTime, d.Location)
	if d.Description != nil {
		fmt.Println(*d.Description)
	}
	if snap.Me != nil {
		fmt.Printf("You are %s\n", snap.Me.Name)
	}

	fmt.Printf("\nGuests (%d):\n", len(snap.Guests))
	for _, g := range snap.Guests {
		if g.IsHost {
			fmt.Printf("  %s (host)\n", g.Name)
		} else {
			fmt.Printf("  %s\n", g.Name)
		}
	}

	itemsByCategory := make(map[string][]*item.ItemResponse)
	var uncategorized []*item.ItemResponse
	for _, it := range snap.Items {
		if it.CategoryID == nil {
			uncategorized = append(uncategorized, it)
			continue
		}
		itemsByCategory[*it.CategoryID] = append(itemsByCategory[*it.CategoryID], it)
	}

	fmt.Println("\nMenu:")
	for _, c := range snap.Categories {
		status := ""
		if c.DesiredCount != nil {
			status = fmt.Sprintf(" [%d/%d]", c.ItemCount, *c.DesiredCount)
			if c.Filled {
				status += " filled"
			}
		}
		fmt.Printf("  %s%s\n", c.Name, status)
		for _, it := range itemsByCategory[c.ID] {
			printItem(it)
		}
	}
	if len(uncategorized) > 0 {
		fmt.Println("  Other")
		for _, it := range uncategorized {
			printItem(it)
		}
	}
}

func printItem(it *item.ItemResponse) {
	line := "    " + it.Name
	if len(it.DietaryTags) > 0 {
		line += " (" + strings.Join(it.DietaryTags, ", ") + ")"
	}
	fmt.Println(line)
}
