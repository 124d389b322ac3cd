package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	evbus "github.com/asaskevich/EventBus"
	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"

	"github.com/quickbasket/quickbasket/internal/adminsync"
	"github.com/quickbasket/quickbasket/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// qbadmin is a terminal front end for the admin API. It logs in,
// fetches one collection through the list controller and prints it.
var (
	server   string
	username string
	password string
	resource string
	deleteID int64
	yes      bool
)

func init() {
	flag.StringVar(&server, "s", "http://127.0.0.1:1816", "server base url")
	flag.StringVar(&username, "u", "admin", "operator username")
	flag.StringVar(&password, "p", "", "operator password")
	flag.StringVar(&resource, "r", "products", "resource: products | categories | subcategories")
	flag.Int64Var(&deleteID, "delete", 0, "id to delete instead of listing")
	flag.BoolVar(&yes, "y", false, "confirm the delete without prompting")
}

func login(ctx context.Context) (string, error) {
	var env adminsync.Envelope
	var code int
	err := gout.POST(server + "/api/auth/login").
		WithContext(ctx).
		SetJSON(gout.H{"username": username, "password": password}).
		BindJSON(&env).
		Code(&code).
		Do()
	if err != nil {
		return "", err
	}
	if code != 200 || env.Error {
		return "", fmt.Errorf("login failed: %s", env.Message)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}

func notifier() *adminsync.Notifier {
	bus := evbus.New()
	_ = bus.Subscribe(adminsync.TopicToastSuccess, func(t adminsync.Toast) {
		fmt.Fprintf(os.Stdout, "ok: %s\n", t.Message)
	})
	_ = bus.Subscribe(adminsync.TopicToastFailure, func(t adminsync.Toast) {
		fmt.Fprintf(os.Stderr, "failed: %s\n", t.Message)
	})
	return adminsync.NewNotifier(bus)
}

func runProducts(ctx context.Context, token string) error {
	client := adminsync.NewHTTPClient[domain.Product](server, "/api/products", token)
	ctl := adminsync.NewController[domain.Product](client, notifier())
	if deleteID != 0 {
		return runDelete(ctx, ctl, deleteID)
	}
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	for _, p := range ctl.Rows() {
		price := 0.0
		if p.Price != nil {
			price = *p.Price
		}
		fmt.Fprintf(os.Stdout, "%d\t%s\t%.2f\t%s\n", p.ID, p.Name, price, p.Unit)
	}
	return nil
}

func runCategories(ctx context.Context, token string) error {
	client := adminsync.NewHTTPClient[domain.Category](server, "/api/categories", token)
	ctl := adminsync.NewController[domain.Category](client, notifier())
	if deleteID != 0 {
		return runDelete(ctx, ctl, deleteID)
	}
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	for _, cat := range ctl.Rows() {
		fmt.Fprintf(os.Stdout, "%d\t%s\n", cat.ID, cat.Name)
	}
	return nil
}

func runSubCategories(ctx context.Context, token string) error {
	client := adminsync.NewHTTPClient[domain.SubCategory](server, "/api/sub-categories", token)
	ctl := adminsync.NewController[domain.SubCategory](client, notifier())
	if deleteID != 0 {
		return runDelete(ctx, ctl, deleteID)
	}
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	for _, sc := range ctl.Rows() {
		fmt.Fprintf(os.Stdout, "%d\t%s\n", sc.ID, sc.Name)
	}
	return nil
}

func runDelete[T any](ctx context.Context, ctl *adminsync.Controller[T], id int64) error {
	if err := ctl.OpenDelete(id); err != nil {
		return err
	}
	if !yes {
		fmt.Fprintf(os.Stdout, "delete %s %d? [y/N] ", resource, id)
		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		if answer != "y" && answer != "Y" {
			return ctl.CloseModal()
		}
	}
	return ctl.ConfirmDelete(ctx)
}

func main() {
	flag.Parse()
	ctx := context.Background()

	token, err := login(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch resource {
	case "products":
		err = runProducts(ctx, token)
	case "categories":
		err = runCategories(ctx, token)
	case "subcategories":
		err = runSubCategories(ctx, token)
	default:
		err = fmt.Errorf("unknown resource %q", resource)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
