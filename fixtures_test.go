package conventus_test

import (
	"errors"

	"github.com/danmuck/conventus"
)

var (
	ErrInvalidComponent = errors.New("invalid component")
	ErrInvalidItem      = errors.New("invalid item")
)

// Component is a single-byte part; 0 never appears in a valid Item.
type Component uint8

// Item is a pair of components. 255 cannot be emitted as the first component.
type Item struct {
	First  Component
	Second Component
}

func (Item) ComposeFrom(parts *[]Component) (Item, error) {
	return conventus.Transact(parts, func(cur *conventus.Cursor[Component]) (Item, error) {
		if err := cur.Need(2); err != nil {
			return Item{}, err
		}
		first, _ := cur.Next()
		second, _ := cur.Next()
		if first == 0 || second == 0 {
			return Item{}, ErrInvalidComponent
		}
		return Item{First: first, Second: second}, nil
	})
}

func (Component) DecomposeFrom(item Item) ([]Component, error) {
	if item.First == 255 {
		return nil, ErrInvalidItem
	}
	return []Component{item.First, item.Second}, nil
}

// Marker composes from nothing, which ComposeAll must refuse to loop on.
type Marker struct{}

func (Marker) ComposeFrom(parts *[]Component) (Marker, error) {
	return Marker{}, nil
}
