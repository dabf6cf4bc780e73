package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrLineNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"user_id" json:"userId"`
	Items     []CartLine         `bson:"items" json:"items"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CartLine carries a display snapshot taken when the product was first
// added. Name, price and image are not refreshed when the product changes.
type CartLine struct {
	ProductID ProductID `bson:"product_id" json:"productId"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	ImageURL  string    `bson:"image_url" json:"imageUrl"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Lines returns the items, never nil.
func (c *Cart) Lines() []CartLine {
	if c.Items == nil {
		return []CartLine{}
	}
	return c.Items
}

func (c *Cart) indexOf(id ProductID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// AddLine increments the quantity of the line for line.ProductID, or appends
// line when the product is not in the cart yet.
func (c *Cart) AddLine(line CartLine) error {
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(line.ProductID); i >= 0 {
		c.Items[i].Quantity += line.Quantity
		return nil
	}
	c.Items = append(c.Items, line)
	return nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// or less removes the line.
func (c *Cart) SetQuantity(id ProductID, quantity int) error {
	i := c.indexOf(id)
	if i < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
		return nil
	}
	c.Items[i].Quantity = quantity
	return nil
}

// RemoveLine drops every line for id. Removing an absent product is a no-op.
func (c *Cart) RemoveLine(id ProductID) {
	kept := make([]CartLine, 0, len(c.Items))
	for _, line := range c.Items {
		if line.ProductID != id {
			kept = append(kept, line)
		}
	}
	c.Items = kept
}

func (c *Cart) Clear() {
	c.Items = []CartLine{}
}

// MergeGuest folds a pre-login cart into c in the order given. Guest
// quantities below one count as one, so a merge never lowers a quantity.
func (c *Cart) MergeGuest(lines []CartLine) {
	for _, line := range lines {
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		if i := c.indexOf(line.ProductID); i >= 0 {
			c.Items[i].Quantity += line.Quantity
			continue
		}
		c.Items = append(c.Items, line)
	}
}
