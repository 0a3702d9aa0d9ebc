package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"agroconnect/cart"
	"agroconnect/catalog"
	"agroconnect/chat"
	"agroconnect/checkout"
	"agroconnect/client"
	"agroconnect/contract"
	"agroconnect/domain"
	"agroconnect/internal"
	"agroconnect/moderation"
	"agroconnect/observability"
	"agroconnect/runtime/workers"
	"agroconnect/session"
)

type replDeps struct {
	log           *slog.Logger
	config        internal.Config
	store         *session.Store
	engine        *cart.Engine
	catalog       *catalog.Service
	checkout      *checkout.Service
	backend       *client.Backend
	alerter       contract.Alerter
	moderator     *moderation.Moderator
	monitoring    *observability.MonitoringManager
	notifications *workers.NotificationPoller
	sinks         []contract.EventSink
}

// Repl is the interactive terminal shell driving the client services,
// standing in for the mobile screens.
type Repl struct {
	replDeps
	in *bufio.Scanner
}

func NewRepl(deps replDeps) *Repl {
	return &Repl{replDeps: deps, in: bufio.NewScanner(os.Stdin)}
}

func (r *Repl) Run(ctx context.Context) error {
	color.New(color.FgGreen, color.OpBold).Println("AgroConnect")
	r.printSession()
	fmt.Println(`Escribe "help" para ver los comandos.`)

	for {
		fmt.Print("> ")
		line, ok := r.readLine(ctx)
		if !ok {
			return ctx.Err()
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		command, args := fields[0], fields[1:]

		switch command {
		case "help":
			r.printHelp()
		case "login":
			r.login(ctx, args)
		case "logout":
			r.store.Logout(ctx)
			fmt.Println("Sesión cerrada.")
		case "whoami":
			r.printSession()
		case "theme":
			r.theme(args)
		case "products":
			r.printProducts(r.catalog.Refresh(ctx))
		case "search":
			r.search(ctx, args)
		case "cart":
			r.printCart()
		case "add":
			r.add(ctx, args)
		case "qty":
			r.quantity(ctx, args)
		case "rm":
			r.remove(ctx, args)
		case "clear":
			r.engine.Clear(ctx)
			fmt.Println("Carrito vaciado.")
		case "unread":
			fmt.Printf("Mensajes sin leer: %d\n", r.notifications.Unread())
		case "chat":
			r.chat(ctx, args)
		case "checkout":
			r.checkoutFlow(ctx)
		case "stats":
			r.printStats()
		case "exit", "quit":
			return nil
		default:
			fmt.Printf("Comando desconocido: %s\n", command)
		}
	}
}

func (r *Repl) readLine(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *Repl) printHelp() {
	fmt.Println(`Comandos:
  login <email> <password>   iniciar sesión
  logout                     cerrar sesión
  whoami                     sesión actual
  theme <light|dark>         cambiar el tema
  products                   listar productos (actualiza la caché)
  search <términos>          buscar en la caché local
  cart                       mostrar el carrito
  add <producto> [cantidad]  añadir al carrito
  qty <línea> <cantidad>     cambiar la cantidad de una línea
  rm <línea>                 quitar una línea
  clear                      vaciar el carrito
  unread                     mensajes sin leer
  chat <conversación>        abrir un chat
  checkout                   confirmar el pedido
  stats                      contadores internos
  exit                       salir`)
}

func (r *Repl) printSession() {
	if !r.store.Authenticated() {
		fmt.Println("Sin sesión. Usa: login <email> <password>")
		return
	}
	user := r.store.User()
	fmt.Printf("Conectado como %s (%s), tema %s\n",
		user.DisplayName, user.Role, r.store.Theme())
}

func (r *Repl) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Uso: login <email> <password>")
		return
	}
	user, err := r.store.Login(ctx, args[0], args[1])
	if err != nil {
		r.alerter.Alert("Acceso denegado",
			client.ServerMessage(err, "Credenciales incorrectas"))
		return
	}
	fmt.Printf("Bienvenido, %s.\n", user.DisplayName)
	r.engine.Initialize(ctx)
}

func (r *Repl) theme(args []string) {
	if len(args) != 1 || (args[0] != string(domain.ThemeLight) && args[0] != string(domain.ThemeDark)) {
		fmt.Println("Uso: theme <light|dark>")
		return
	}
	r.store.SetTheme(domain.ThemeMode(args[0]))
	fmt.Printf("Tema guardado: %s\n", args[0])
}

func (r *Repl) search(ctx context.Context, args []string) {
	products, err := r.catalog.Search(ctx, strings.Join(args, " "))
	if err != nil {
		r.log.Error("Search failed", "err", err)
		fmt.Println("La búsqueda no está disponible.")
		return
	}
	r.printProducts(products)
}

func (r *Repl) printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Println("Sin productos.")
		return
	}
	table := newTable("ID", "Nombre", "Precio", "Stock", "Vendedor", "Categoría")
	for _, p := range products {
		table.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.UnitPrice.StringFixed(2),
			strconv.Itoa(p.AvailableStock),
			p.SellerName,
			p.Category,
		})
	}
	table.Render()
}

func (r *Repl) printCart() {
	lines := r.engine.Lines()
	if len(lines) == 0 {
		fmt.Println("El carrito está vacío.")
		return
	}
	table := newTable("Línea", "Producto", "Precio", "Cantidad", "Subtotal", "Vendedor")
	for _, line := range lines {
		table.Append([]string{
			line.LineID,
			fmt.Sprintf("%s %s", line.ImageRef, line.Name),
			line.UnitPrice.StringFixed(2),
			strconv.Itoa(line.Quantity),
			line.Subtotal().StringFixed(2),
			line.SellerName,
		})
	}
	table.Render()

	totals := r.engine.Totals()
	fmt.Printf("Subtotal: %s  Envío: %s  Total: %s\n",
		totals.Subtotal.StringFixed(2),
		totals.ShippingFee.StringFixed(2),
		totals.Total.StringFixed(2))
}

func (r *Repl) add(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Uso: add <producto> [cantidad]")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("Identificador de producto inválido.")
		return
	}
	quantity := 1
	if len(args) > 1 {
		if quantity, err = strconv.Atoi(args[1]); err != nil {
			fmt.Println("Cantidad inválida.")
			return
		}
	}

	product, err := r.catalog.Get(id)
	if err != nil {
		fmt.Println("Producto desconocido. Ejecuta antes: products")
		return
	}
	if r.engine.AddItem(ctx, product, quantity) {
		fmt.Printf("Añadido: %s x%d\n", product.Name, quantity)
	}
}

func (r *Repl) quantity(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Uso: qty <línea> <cantidad>")
		return
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("Cantidad inválida.")
		return
	}
	if r.engine.UpdateQuantity(ctx, args[0], quantity) {
		r.printCart()
	}
}

func (r *Repl) remove(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Uso: rm <línea>")
		return
	}
	if r.engine.RemoveItem(ctx, args[0]) {
		fmt.Println("Línea eliminada.")
	}
}

// chat opens one conversation and polls it in the background while the
// user types. A plain line sends a message; /ver redraws the thread
// and /salir leaves.
func (r *Repl) chat(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Uso: chat <conversación>")
		return
	}
	if !r.store.Authenticated() {
		fmt.Println("Inicia sesión primero.")
		return
	}

	chatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	conversation := chat.Open(chatCtx, args[0], r.store.User().ID,
		r.backend, r.alerter, r.moderator, r.log, r.sinks...)
	poller := workers.NewChatPoller(conversation, r.config.ChatPollInterval, r.log, r.sinks...)
	go func() { _ = poller.Run(chatCtx) }()

	fmt.Println("Chat abierto. Escribe para enviar, /ver para releer, /salir para volver.")
	for {
		fmt.Printf("[%s] ", conversation.ID())
		line, ok := r.readLine(chatCtx)
		if !ok {
			return
		}
		switch line {
		case "/salir":
			return
		case "/ver":
			r.printMessages(conversation.Messages())
		case "":
		default:
			if typed, err := conversation.Send(chatCtx, line); err != nil {
				// The typed text comes back so the user can retry it.
				fmt.Printf("No enviado, recupera tu texto: %s\n", typed)
			}
		}
	}
}

func (r *Repl) printMessages(messages []domain.ChatMessage) {
	if len(messages) == 0 {
		fmt.Println("Sin mensajes.")
		return
	}
	mine := color.New(color.FgGreen)
	theirs := color.New(color.FgCyan)
	for _, message := range messages {
		style := theirs
		prefix := message.SenderID
		if message.SenderIsSelf {
			style = mine
			prefix = "yo"
		}
		style.Printf("%s %s: %s\n",
			message.SentAt.Local().Format("15:04"), prefix, message.Body)
	}
}

// checkoutFlow prompts the delivery form field by field, then submits.
func (r *Repl) checkoutFlow(ctx context.Context) {
	form := domain.DeliveryForm{PaymentMethod: domain.PaymentMethodTest}
	prompts := []struct {
		label string
		dest  *string
	}{
		{"Nombre completo", &form.FullName},
		{"Dirección", &form.Address},
		{"Ciudad", &form.City},
		{"Código postal", &form.PostalCode},
		{"Teléfono", &form.Phone},
	}
	for _, prompt := range prompts {
		fmt.Printf("%s: ", prompt.label)
		value, ok := r.readLine(ctx)
		if !ok {
			return
		}
		*prompt.dest = value
	}

	order, err := r.checkout.Submit(ctx, form)
	if err != nil {
		// The alerter already told the user what went wrong.
		return
	}
	color.New(color.FgGreen, color.OpBold).
		Printf("Pedido %s confirmado, total %s\n", order.ID, order.Total.StringFixed(2))
}

func (r *Repl) printStats() {
	stats := r.monitoring.Snapshot()
	table := newTable("Contador", "Valor")
	table.Append([]string{"Mutaciones sincronizadas", strconv.FormatUint(stats.SyncedMutations, 10)})
	table.Append([]string{"Mutaciones solo locales", strconv.FormatUint(stats.LocalOnlyMutations, 10)})
	table.Append([]string{"Mutaciones rechazadas", strconv.FormatUint(stats.RejectedMutations, 10)})
	table.Append([]string{"Fallos de sondeo", strconv.FormatUint(stats.PollFailures, 10)})
	table.Append([]string{"Alertas mostradas", strconv.FormatUint(stats.AlertsRaised, 10)})
	table.Append([]string{"Mensajes enviados", strconv.FormatUint(stats.MessagesSent, 10)})
	table.Render()
}

func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
