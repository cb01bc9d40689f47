package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/verification"
)

const usage = `commands:
  browse [key=value...]   list products; keys: category search minPrice maxPrice sort rating inStock onSale
  page N                  go to page N of the current listing
  clear-filters           reset every filter
  product ID              show a product and record it as recently viewed
  recent                  list recently viewed product ids
  cart                    show the cart
  add ID [QTY]            add a product to the cart
  qty ITEM QTY            change a cart line quantity
  rm ITEM                 remove a cart line
  clear                   empty the cart
  wish [ID]               toggle a product in the wishlist, or list it
  checkout (or order)     place an order for the cart
  orders                  list your orders
  cancel ORDER            cancel a pending order
  login EMAIL PASSWORD    sign in
  logout                  sign out
  register NAME EMAIL PASSWORD
  verify CODE             submit the emailed verification code
  resend                  request a new verification code
  lang [en|ar]            show or switch the language
  whoami                  show the signed in user
  admin-add CATEGORY PRICE STOCK NAME...
  admin-rm ID
`

type command func(a *app, ctx context.Context, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":          (*app).help,
		"browse":        (*app).browse,
		"page":          (*app).page,
		"clear-filters": (*app).clearFilters,
		"product":       (*app).product,
		"recent":        (*app).recent,
		"cart":          (*app).showCart,
		"add":           (*app).add,
		"qty":           (*app).qty,
		"rm":            (*app).rm,
		"clear":         (*app).clear,
		"wish":          (*app).wish,
		"checkout":      (*app).checkout,
		"order":         (*app).checkout,
		"orders":        (*app).orders,
		"cancel":        (*app).cancel,
		"login":         (*app).login,
		"logout":        (*app).logout,
		"register":      (*app).register,
		"verify":        (*app).verify,
		"resend":        (*app).resend,
		"lang":          (*app).lang,
		"whoami":        (*app).whoami,
		"admin-add":     (*app).adminAdd,
		"admin-rm":      (*app).adminRemove,
	}
}

var errUsage = errors.New("wrong arguments, see help")

func (a *app) run(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q\n", args[0])
		return errUsage
	}
	return cmd(a, ctx, args[1:])
}

func (a *app) help(ctx context.Context, args []string) error {
	fmt.Fprint(a.out, usage)
	return nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errUsage
	}
	return n, nil
}

// --- Discovery ---

func (a *app) browse(ctx context.Context, args []string) error {
	if len(args) > 0 {
		values, err := filterArgs(args)
		if err != nil {
			return errUsage
		}
		for key := range values {
			a.view.SetFilter(key, values.Get(key))
		}
	}
	if err := a.view.Reload(ctx); err != nil {
		return err
	}
	a.printListing()
	return nil
}

func (a *app) page(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := atoi(args[0])
	if err != nil {
		return err
	}
	if err := a.view.GoToPage(ctx, n); err != nil {
		return err
	}
	a.printListing()
	return nil
}

func (a *app) clearFilters(ctx context.Context, args []string) error {
	a.view.ClearFilters()
	return a.browse(ctx, nil)
}

func (a *app) printListing() {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\t")
	for _, c := range a.view.Cards() {
		marks := ""
		if c.Wishlisted {
			marks += " ♥"
		}
		if c.InCart {
			marks += fmt.Sprintf(" [%d in cart]", c.CartQuantity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.Product.ID, a.locale.Text(c.Product.Name),
			a.locale.Price(c.FinalPrice), c.Product.Stock, marks)
	}
	tw.Flush()
	p := a.view.Pagination()
	fmt.Fprintf(a.out, "page %d/%d, %d products  ?%s\n", p.Page, p.Pages, p.Total, a.query)
}

func (a *app) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := a.view.OpenProduct(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  [%s]\n%s\n", a.locale.Text(p.Name), p.Category, a.locale.Text(p.Description))
	price := a.locale.Price(p.FinalPrice())
	if p.OnSale() {
		price = fmt.Sprintf("%s (-%g%%)", price, p.Discount)
	}
	fmt.Fprintf(a.out, "price %s  stock %d  rating %.1f (%d)\n", price, p.Stock, p.Rating.Average, p.Rating.Count)
	if img := p.PrimaryImage(); img != "" {
		fmt.Fprintln(a.out, img)
	}
	return nil
}

func (a *app) recent(ctx context.Context, args []string) error {
	ids, err := a.view.RecentlyViewed(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

// --- Cart and wishlist ---

func (a *app) showCart(ctx context.Context, args []string) error {
	if err := a.session.RequireAuth(); err != nil {
		a.toaster.Error(i18n.MsgLoginRequired)
		return err
	}
	cart := a.cart.Cart()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tSUBTOTAL")
	for _, it := range cart.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, a.locale.Text(it.Product.Name), it.Quantity, a.locale.Price(it.Subtotal()))
	}
	tw.Flush()
	fmt.Fprintf(a.out, "%d items, total %s\n", cart.Count(), a.locale.Price(cart.Total()))
	return nil
}

// productFor prefers the product already on screen and falls back to a fetch.
func (a *app) productFor(ctx context.Context, id string) (domain.Product, error) {
	if p, ok := a.view.Lookup(id); ok {
		return p, nil
	}
	p, err := a.api.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			a.toaster.Error(i18n.MsgProductNotFound)
		} else {
			a.toaster.Error(i18n.MsgRequestFailed)
		}
		return domain.Product{}, err
	}
	return *p, nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	qty := 1
	if len(args) == 2 {
		n, err := atoi(args[1])
		if err != nil {
			return err
		}
		qty = n
	}
	p, err := a.productFor(ctx, args[0])
	if err != nil {
		return err
	}
	return a.cart.AddToCart(ctx, p, qty)
}

func (a *app) qty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	n, err := atoi(args[1])
	if err != nil {
		return err
	}
	return a.cart.UpdateQuantity(ctx, args[0], n)
}

func (a *app) rm(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.cart.RemoveItem(ctx, args[0])
}

func (a *app) clear(ctx context.Context, args []string) error {
	return a.cart.ClearCart(ctx)
}

func (a *app) wish(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := a.session.RequireAuth(); err != nil {
			a.toaster.Error(i18n.MsgLoginRequired)
			return err
		}
		for _, id := range a.cart.Wishlist().ProductIDs {
			fmt.Fprintln(a.out, id)
		}
		return nil
	}
	_, err := a.cart.ToggleWishlist(ctx, args[0])
	return err
}

// ask prompts for one line of input.
func (a *app) ask(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) checkout(ctx context.Context, args []string) error {
	if err := a.session.RequireAuth(); err != nil {
		a.toaster.Error(i18n.MsgLoginRequired)
		return err
	}
	addr := domain.Address{
		FullName:   a.ask("full name"),
		Phone:      a.ask("phone"),
		Street:     a.ask("street"),
		City:       a.ask("city"),
		Country:    a.ask("country"),
		PostalCode: a.ask("postal code"),
	}
	payment := a.ask("payment (card/cod)")
	order, err := a.cart.Checkout(ctx, addr, payment)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "order %s: %s, total %s\n", order.ID, order.Status, a.locale.Price(order.TotalDecimal()))
	return nil
}

func (a *app) orders(ctx context.Context, args []string) error {
	list, err := a.api.ListOrders(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthenticated) {
			a.toaster.Error(i18n.MsgLoginRequired)
		} else {
			a.toaster.Error(i18n.MsgRequestFailed)
		}
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tPLACED\tSTATUS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, a.locale.Price(o.TotalDecimal()))
	}
	return tw.Flush()
}

func (a *app) cancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	order, err := a.api.CancelOrder(ctx, args[0])
	if err != nil {
		a.toaster.Error(i18n.MsgRequestFailed)
		return err
	}
	a.toaster.Success(i18n.MsgOrderCancelled, order.ID)
	return nil
}

// --- Identity ---

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	err := a.session.Login(ctx, a.api, args[0], args[1])
	var apiErr *apiclient.APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr) && apiErr.Code == apiclient.CodeNotVerified:
		a.pending = verification.New(a.api, a.session, a.toaster, args[0], apiErr.CooldownSeconds,
			verification.WithLogger(a.logger))
		fmt.Fprintf(a.out, "%s is not verified yet. Use \"verify CODE\" or \"resend\".\n", args[0])
		return err
	default:
		a.toaster.Error(i18n.MsgLoginFailed)
		return err
	}
	user, _ := a.session.User()
	a.toaster.Success(i18n.MsgLoginSucceeded, user.Name)
	return a.cart.Refresh(ctx)
}

func (a *app) logout(ctx context.Context, args []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.pending = nil
	a.toaster.Success(i18n.MsgLoggedOut)
	return a.cart.Refresh(ctx)
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	res, err := a.session.Register(ctx, a.api, args[0], args[1], args[2])
	if err != nil {
		a.toaster.Error(i18n.MsgRequestFailed)
		return err
	}
	a.pending = verification.New(a.api, a.session, a.toaster, res.Email, res.CooldownSeconds,
		verification.WithLogger(a.logger))
	a.toaster.Success(i18n.MsgRegistered, res.Email)
	return nil
}

func (a *app) verify(ctx context.Context, args []string) error {
	if a.pending == nil {
		fmt.Fprintln(a.out, "nothing to verify; register or log in first")
		return errUsage
	}
	if len(args) != 1 {
		return errUsage
	}
	if err := a.pending.Submit(ctx, args[0]); err != nil {
		if left := a.pending.Remaining(); left > 0 {
			fmt.Fprintf(a.out, "resend available in %s\n", left)
		}
		return err
	}
	a.pending = nil
	return a.cart.Refresh(ctx)
}

func (a *app) resend(ctx context.Context, args []string) error {
	if a.pending == nil {
		fmt.Fprintln(a.out, "nothing to verify; register or log in first")
		return errUsage
	}
	return a.pending.Resend(ctx)
}

func (a *app) whoami(ctx context.Context, args []string) error {
	user, ok := a.session.User()
	if !ok {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", user.Name, user.Email, user.Role)
	return nil
}

func (a *app) lang(ctx context.Context, args []string) error {
	if len(args) == 1 {
		if _, err := a.locale.SetLanguage(ctx, args[0]); err != nil {
			a.logger.Printf("WARN: %v", err)
		}
	}
	fmt.Fprintf(a.out, "%s (%s)\n", a.locale.Language(), a.locale.Direction())
	return nil
}

// --- Admin ---

func (a *app) adminAdd(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return errUsage
	}
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return errUsage
	}
	stock, err := atoi(args[2])
	if err != nil {
		return err
	}
	name := strings.Join(args[3:], " ")
	p, err := a.api.CreateProduct(ctx, apiclient.ProductInput{
		Name:     domain.LocalizedText{En: name, Ar: name},
		Price:    price,
		Stock:    stock,
		Category: args[0],
	})
	if err != nil {
		a.toaster.Error(i18n.MsgRequestFailed)
		return err
	}
	fmt.Fprintf(a.out, "created %s\n", p.ID)
	return nil
}

func (a *app) adminRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.api.DeleteProduct(ctx, args[0]); err != nil {
		a.toaster.Error(i18n.MsgRequestFailed)
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", args[0])
	return nil
}
