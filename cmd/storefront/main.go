package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"libreria/internal/adapters/api"
	"libreria/internal/adapters/challenge"
	"libreria/internal/adapters/console"
	"libreria/internal/adapters/storage"
	receiptStore "libreria/internal/adapters/storage/receipt"
	"libreria/internal/application/orchestrators"
	"libreria/internal/domain/catalog"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	logLevel := slog.LevelInfo
	if envOrDefault("LIBRERIA_LOG_LEVEL", "") == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Local receipt cache with WAL mode and busy timeout
	dbPath := envOrDefault("LIBRERIA_DB", "libreria.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	baseURL := envOrDefault("LIBRERIA_API_URL", "http://localhost:5000")
	client, err := api.New(baseURL)
	if err != nil {
		log.Fatalf("invalid LIBRERIA_API_URL: %v", err)
	}

	binder := challenge.NewBinder(challenge.NewScriptedProvider(), challenge.Config{
		PollAttempts: envInt("LIBRERIA_CHALLENGE_ATTEMPTS", 0),
		PollInterval: time.Duration(envInt("LIBRERIA_CHALLENGE_INTERVAL_MS", 0)) * time.Millisecond,
	})
	siteKey := os.Getenv("LIBRERIA_SITE_KEY")

	presenter := console.New(os.Stdout)

	sessions := &orchestrators.SessionManager{
		API:        client,
		Challenge:  binder,
		Affordance: presenter,
		Surface:    presenter,
		Nav:        presenter,
	}
	carts := &orchestrators.CartController{
		API:    client,
		View:   presenter,
		Status: presenter,
	}
	checkouts := &orchestrators.CheckoutOrchestrator{
		API:        client,
		Cart:       carts,
		Receipts:   receiptStore.NewSQLiteStore(db),
		View:       presenter,
		Nav:        presenter,
		Currency:   envOrDefault("LIBRERIA_CURRENCY", "GTQ"),
		Now:        time.Now,
		GenerateID: uuid.NewString,
	}
	history := &orchestrators.HistoryPaginator{
		API:    client,
		View:   presenter,
		Status: presenter,
	}

	ctx := context.Background()
	slog.Info("storefront_start", "version", version, "backend", baseURL)
	sessions.Refresh(ctx)
	carts.Reload(ctx)

	shell := &shell{
		sessions:  sessions,
		carts:     carts,
		checkouts: checkouts,
		history:   history,
		client:    client,
		binder:    binder,
		siteKey:   siteKey,
	}
	shell.run(ctx)
}

// shell reads commands from stdin and dispatches them to the controllers.
type shell struct {
	sessions  *orchestrators.SessionManager
	carts     *orchestrators.CartController
	checkouts *orchestrators.CheckoutOrchestrator
	history   *orchestrators.HistoryPaginator
	client    *api.Client
	binder    *challenge.Binder
	siteKey   string

	// found keeps the last catalog search so items can be added by id.
	found map[string]catalog.Product
}

func (s *shell) run(ctx context.Context) {
	fmt.Println("librería en línea; escribe 'ayuda' para ver los comandos")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "salir" {
			return
		}
		s.dispatch(ctx, line)
	}
}

func (s *shell) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "ayuda":
		s.help()
	case "login":
		if len(args) < 2 {
			fmt.Println("uso: login <email> <contraseña>")
			return
		}
		widget := s.binder.Render(ctx, "login", s.siteKey)
		s.sessions.Login(ctx, orchestrators.LoginInput{
			Email:    args[0],
			Password: args[1],
			Token:    s.binder.GetToken(widget),
			WidgetID: widget,
		})
	case "registro":
		if len(args) < 4 {
			fmt.Println("uso: registro <nombre> <email> <contraseña> <confirmación>")
			return
		}
		widget := s.binder.Render(ctx, "registro", s.siteKey)
		s.sessions.Register(ctx, orchestrators.RegisterInput{
			Nombre:    args[0],
			Email:     args[1],
			Password:  args[2],
			Password2: args[3],
			Token:     s.binder.GetToken(widget),
			WidgetID:  widget,
		})
	case "reenviar":
		if len(args) < 1 {
			fmt.Println("uso: reenviar <email>")
			return
		}
		s.sessions.ResendVerification(ctx, args[0])
	case "logout":
		s.sessions.Logout(ctx)
	case "sesion":
		id := s.sessions.Identity()
		if id.Authenticated {
			fmt.Printf("sesión de %s\n", id.DisplayName())
		} else {
			fmt.Println("sin sesión")
		}
	case "buscar", "libros":
		s.search(ctx, cmd, strings.Join(args, " "))
	case "categoria":
		if len(args) < 1 {
			fmt.Println("uso: categoria <libros|utiles|novelas|infantil>")
			return
		}
		s.category(ctx, args[0])
	case "agregar":
		if len(args) < 1 {
			fmt.Println("uso: agregar <id>")
			return
		}
		p, ok := s.found[args[0]]
		if !ok {
			fmt.Println("producto no encontrado; usa 'buscar' primero")
			return
		}
		s.carts.Add(ctx, p)
	case "carrito":
		s.carts.Reload(ctx)
	case "mas":
		if len(args) < 1 {
			fmt.Println("uso: mas <id>")
			return
		}
		s.carts.SetQuantity(ctx, args[0], 1)
	case "menos":
		if len(args) < 1 {
			fmt.Println("uso: menos <id>")
			return
		}
		s.carts.SetQuantity(ctx, args[0], -1)
	case "quitar":
		if len(args) < 1 {
			fmt.Println("uso: quitar <id>")
			return
		}
		s.carts.Remove(ctx, args[0])
	case "vaciar":
		s.carts.Clear(ctx)
	case "pagar":
		s.checkouts.Enter(ctx)
	case "confirmar":
		s.confirm(ctx, args)
	case "cancelar":
		s.checkouts.Cancel()
	case "recibo":
		if err := s.checkouts.DownloadReceipt(ctx, os.Stdout); err != nil {
			fmt.Printf("recibo no disponible: %v\n", err)
		}
	case "imprimir":
		if err := s.checkouts.OpenPrintView(); err != nil {
			fmt.Printf("sin compra completada: %v\n", err)
		}
	case "historial":
		s.historyCmd(ctx, args)
	case "asistente":
		s.assistant(ctx, strings.Join(args, " "))
	case "postal":
		if len(args) < 1 {
			fmt.Println("uso: postal <código>")
			return
		}
		info, err := s.client.Postal(ctx, args[0])
		if err != nil {
			fmt.Printf("código postal no encontrado: %v\n", err)
			return
		}
		fmt.Printf("%s: %s, %s\n", info.Codigo, info.Ciudad, info.Estado)
	default:
		fmt.Printf("comando desconocido %q; escribe 'ayuda'\n", cmd)
	}
}

func (s *shell) search(ctx context.Context, cmd, q string) {
	var (
		products []catalog.Product
		err      error
	)
	if cmd == "libros" {
		products, err = s.client.Books(ctx, q)
	} else {
		products, err = s.client.Products(ctx, q)
	}
	if err != nil {
		fmt.Printf("búsqueda fallida: %v\n", err)
		return
	}
	s.found = make(map[string]catalog.Product, len(products))
	for _, p := range products {
		s.found[p.ID] = p
		fmt.Printf("%s  %s  Q%.2f\n", p.ID, p.Nombre, p.Precio)
	}
	if len(products) == 0 {
		fmt.Println("sin resultados")
	}
}

// categoryQueries maps category shortcuts to predefined catalog searches.
var categoryQueries = map[string]string{
	"libros":   "",
	"utiles":   "útiles escolares",
	"novelas":  "novela",
	"infantil": "infantil",
}

func (s *shell) category(ctx context.Context, name string) {
	q, ok := categoryQueries[name]
	if !ok {
		fmt.Printf("categoría desconocida %q\n", name)
		return
	}
	if name == "libros" {
		s.search(ctx, "libros", q)
		return
	}
	s.search(ctx, "buscar", q)
}

// confirm parses key=value checkout arguments:
// confirmar pago=stripe metodo=recoger nombre="Ana" [email=...] [nit=...]
// [telefono=...] [direccion=...]
func (s *shell) confirm(ctx context.Context, args []string) {
	form := orchestrators.CheckoutForm{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Printf("argumento inválido %q; usa clave=valor\n", arg)
			return
		}
		switch key {
		case "pago":
			form.Pago = value
		case "email":
			form.Email = value
		case "nit":
			form.NIT = value
		case "metodo":
			form.Entrega.Metodo = value
		case "nombre":
			form.Entrega.Nombre = value
		case "telefono":
			form.Entrega.Telefono = value
		case "direccion":
			form.Entrega.Direccion = value
		default:
			fmt.Printf("clave desconocida %q\n", key)
			return
		}
	}
	s.checkouts.Submit(ctx, form)
}

// historyCmd handles: historial [email], historial mas,
// historial desde=YYYY-MM-DD hasta=YYYY-MM-DD, historial limpiar.
func (s *shell) historyCmd(ctx context.Context, args []string) {
	if len(args) > 0 {
		switch args[0] {
		case "mas":
			s.history.LoadMore(ctx)
			return
		case "limpiar":
			s.history.ClearFilter(ctx)
			return
		}
		if strings.Contains(args[0], "=") {
			var from, to time.Time
			for _, arg := range args {
				key, value, _ := strings.Cut(arg, "=")
				t, err := time.Parse("2006-01-02", value)
				if err != nil {
					fmt.Printf("fecha inválida %q; usa YYYY-MM-DD\n", value)
					return
				}
				switch key {
				case "desde":
					from = t
				case "hasta":
					to = t
				default:
					fmt.Printf("clave desconocida %q\n", key)
					return
				}
			}
			s.history.Filter(ctx, from, to)
			return
		}
		s.history.Load(ctx, args[0])
		return
	}

	id := s.sessions.Identity()
	if !id.Authenticated {
		fmt.Println("inicia sesión o indica un email: historial <email>")
		return
	}
	s.history.Load(ctx, id.User.Email)
}

func (s *shell) assistant(ctx context.Context, question string) {
	res, err := orchestrators.ExecuteAskAssistant(ctx, orchestrators.AskAssistantInput{Question: question}, orchestrators.AskAssistantDeps{API: s.client})
	if err != nil {
		fmt.Printf("asistente no disponible: %v\n", err)
		return
	}
	fmt.Println(res.Markdown)
}

func (s *shell) help() {
	fmt.Print(`comandos:
  login <email> <contraseña>        iniciar sesión
  registro <nombre> <email> <c> <c> crear cuenta
  reenviar <email>                  reenviar correo de verificación
  logout / sesion                   cerrar sesión / ver sesión
  buscar [texto] | libros [texto]   buscar en el catálogo
  categoria <nombre>                atajo de categoría
  agregar <id>                      agregar producto al carrito
  carrito | mas/menos/quitar <id>   ver y ajustar el carrito
  vaciar                            vaciar el carrito
  pagar                             iniciar el pago
  confirmar pago=.. metodo=.. ...   confirmar la compra (clave=valor)
  cancelar                          abandonar el pago
  recibo | imprimir                 último recibo / vista de impresión
  historial [email|mas|desde=..]    historial de compras
  asistente <pregunta>              asistente de compras
  postal <código>                   consultar código postal
  salir
`)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
