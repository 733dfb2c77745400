package shop

import "github.com/Skotchmaster/storefront/internal/models"

type State struct {
	Products []models.Product  `json:"products"`
	Cart     []models.CartItem `json:"cart"`
	Session  *models.Session   `json:"user"`
	Orders   []models.Order    `json:"orders"`
	CartOpen bool              `json:"isCartOpen"`
}

// Token is the bearer of the current session, empty when signed out.
func (s State) Token() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Token
}

func (s State) clone() State {
	out := State{
		Products: append([]models.Product{}, s.Products...),
		Cart:     models.CloneItems(s.Cart),
		CartOpen: s.CartOpen,
		Orders:   make([]models.Order, len(s.Orders)),
	}
	for i, o := range s.Orders {
		out.Orders[i] = models.CloneOrder(o)
	}
	if s.Session != nil {
		sess := *s.Session
		out.Session = &sess
	}
	return out
}

// Action is one state transition. The set is closed.
type Action interface{ action() }

type (
	SetProducts    struct{ Products []models.Product }
	AddToCart      struct{ Product models.Product }
	RemoveFromCart struct{ ID string }
	UpdateQuantity struct {
		ID       string
		Quantity int
	}
	ClearCart  struct{}
	ToggleCart struct{}
	SetSession struct{ Session *models.Session }
	AddOrder   struct{ Order models.Order }
	SetOrders  struct{ Orders []models.Order }
	SetStatus  struct {
		ID     string
		Status models.OrderStatus
	}
)

func (SetProducts) action()    {}
func (AddToCart) action()      {}
func (RemoveFromCart) action() {}
func (UpdateQuantity) action() {}
func (ClearCart) action()      {}
func (ToggleCart) action()     {}
func (SetSession) action()     {}
func (AddOrder) action()       {}
func (SetOrders) action()      {}
func (SetStatus) action()      {}

func touchesCart(a Action) bool {
	switch a.(type) {
	case AddToCart, RemoveFromCart, UpdateQuantity, ClearCart:
		return true
	}
	return false
}

func touchesSession(a Action) bool {
	_, ok := a.(SetSession)
	return ok
}

func withoutItem(cart []models.CartItem, id string) []models.CartItem {
	out := make([]models.CartItem, 0, len(cart))
	for _, it := range cart {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Reduce returns the state after a. It never modifies s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetProducts:
		s.Products = append([]models.Product{}, a.Products...)

	case AddToCart:
		cart := models.CloneItems(s.Cart)
		merged := false
		for i := range cart {
			if cart[i].ID == a.Product.ID {
				cart[i].Quantity++
				merged = true
				break
			}
		}
		if !merged {
			cart = append(cart, models.CartItem{Product: a.Product, Quantity: 1})
		}
		s.Cart = cart
		s.CartOpen = true

	case RemoveFromCart:
		s.Cart = withoutItem(s.Cart, a.ID)

	case UpdateQuantity:
		if a.Quantity <= 0 {
			s.Cart = withoutItem(s.Cart, a.ID)
			break
		}
		cart := models.CloneItems(s.Cart)
		for i := range cart {
			if cart[i].ID == a.ID {
				cart[i].Quantity = a.Quantity
			}
		}
		s.Cart = cart

	case ClearCart:
		s.Cart = []models.CartItem{}

	case ToggleCart:
		s.CartOpen = !s.CartOpen

	case SetSession:
		if a.Session == nil {
			s.Session = nil
			break
		}
		sess := *a.Session
		s.Session = &sess

	case AddOrder:
		s.Orders = append([]models.Order{models.CloneOrder(a.Order)}, s.Orders...)

	case SetOrders:
		orders := make([]models.Order, len(a.Orders))
		for i, o := range a.Orders {
			orders[i] = models.CloneOrder(o)
		}
		s.Orders = orders

	case SetStatus:
		if !a.Status.Valid() {
			break
		}
		orders := append([]models.Order{}, s.Orders...)
		for i := range orders {
			if orders[i].ID == a.ID {
				orders[i].Status = a.Status
			}
		}
		s.Orders = orders
	}
	return s
}
