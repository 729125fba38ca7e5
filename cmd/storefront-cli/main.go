// storefront-cli — консольный клиент витрины: вход, просмотр и правка
// профиля, каталог, корзина и произвольные аутентифицированные вызовы.
//
// Использование:
//
//	storefront-cli [--config path] <command> [args]
//
// Команды:
//
//	login -u <username> -p <password>   вход и сохранение пары токенов
//	whoami                              текущий пользователь
//	products [-search s]                страница каталога
//	cart-add -product <id> [-qty n]     добавить товар в корзину
//	get <endpoint>                      произвольный GET через шлюз
//	logout                              выход и отзыв refresh-токена
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pribylovaa/storefront-client/internal/api"
	"github.com/pribylovaa/storefront-client/internal/config"
	"github.com/pribylovaa/storefront-client/internal/gateway"
	"github.com/pribylovaa/storefront-client/internal/session"
	"github.com/pribylovaa/storefront-client/internal/storage"
	filestore "github.com/pribylovaa/storefront-client/internal/storage/file"
	"github.com/pribylovaa/storefront-client/internal/storage/memory"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	fs := flag.NewFlagSet("storefront-cli", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "path to config file")
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		return 2
	}

	cfg := config.MustLoad(configPath)

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	sess := session.New(store, session.Config{
		BaseURL:   cfg.API.BaseURL,
		ClockSkew: cfg.Session.ClockSkew,
		Notify: func(n session.Notice) {
			fmt.Printf("[%s] %s\n", n.Severity, n.Message)
		},
	})
	sess.Bootstrap(ctx)

	gw, err := gateway.New(gateway.Config{
		BaseURL:   cfg.API.BaseURL,
		Store:     store,
		Auth:      sess,
		ClockSkew: cfg.Session.ClockSkew,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	client := api.New(gw)

	if err := dispatch(ctx, args, client, sess); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	return 0
}

// openStore выбирает хранилище: файл из конфигурации, иначе файл по
// умолчанию в пользовательской конфиг-директории, иначе память.
func openStore(cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	path := cfg.Session.CredentialsFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return memory.New(), nil
		}
		path = filepath.Join(dir, "storefront-cli", "credentials.json")
	}

	return filestore.New(path, log)
}

func dispatch(ctx context.Context, args []string, client *api.Client, sess *session.Session) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return cmdLogin(ctx, rest, client, sess)
	case "whoami":
		return cmdWhoami(ctx, sess)
	case "products":
		return cmdProducts(ctx, rest, client)
	case "cart-add":
		return cmdCartAdd(ctx, rest, client)
	case "get":
		return cmdGet(ctx, rest, client)
	case "logout":
		sess.Logout(ctx)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdLogin(ctx context.Context, args []string, client *api.Client, sess *session.Session) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("login: -u and -p are required")
	}

	pair, err := client.ObtainToken(ctx, *username, *password)
	if err != nil {
		return err
	}

	if _, err := sess.Login(ctx, pair.Access, pair.Refresh); err != nil {
		return err
	}

	return nil
}

func cmdWhoami(ctx context.Context, sess *session.Session) error {
	if !sess.IsAuthenticated() {
		fmt.Println("not logged in")
		return nil
	}

	if sess.CurrentUser() == nil {
		sess.Bootstrap(ctx)
	}

	fmt.Printf("%s (%s)\n", sess.Username(), sess.State())
	if u := sess.CurrentUser(); u != nil {
		fmt.Printf("  id=%d email=%s\n", u.ID, u.Email)
	}

	return nil
}

func cmdProducts(ctx context.Context, args []string, client *api.Client) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	search := fs.String("search", "", "search query")
	_ = fs.Parse(args)

	items, count, err := client.Products(ctx, api.ProductsParams{Search: *search})
	if err != nil {
		return err
	}

	fmt.Printf("total: %d\n", count)
	for _, p := range items {
		fmt.Printf("  #%d %s (%s) %s\n", p.ID, p.Name, p.Brand, p.FinalPrice)
	}

	return nil
}

func cmdCartAdd(ctx context.Context, args []string, client *api.Client) error {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	productID := fs.Int64("product", 0, "product id")
	qty := fs.Int64("qty", 1, "quantity")
	_ = fs.Parse(args)

	if *productID == 0 {
		return fmt.Errorf("cart-add: -product is required")
	}

	item, err := client.AddCartItem(ctx, *productID, *qty)
	if err != nil {
		return err
	}

	fmt.Printf("added: %d x %s (subtotal %s)\n", item.Quantity, item.Product.Name, item.Subtotal)
	return nil
}

func cmdGet(ctx context.Context, args []string, client *api.Client) error {
	if len(args) != 1 {
		return fmt.Errorf("get: exactly one endpoint argument expected")
	}

	var out json.RawMessage
	if err := client.Raw(ctx, args[0], &out); err != nil {
		return err
	}

	var pretty map[string]any
	if err := json.Unmarshal(out, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pretty)
	}

	fmt.Println(string(out))
	return nil
}
