package resources

import (
	"context"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/models"
)

// ClientSource yields the API client for the current session.
type ClientSource interface {
	Client(ctx context.Context) *apiclient.Client
}

// Set exposes each backend resource of one browser through the cache.
// Mutations go straight to the backend and invalidate what they touched.
type Set struct {
	cache   *Cache
	clients ClientSource
}

func NewSet(cache *Cache, clients ClientSource) *Set {
	return &Set{cache: cache, clients: clients}
}

func (s *Set) Cache() *Cache {
	return s.cache
}

func (s *Set) api(ctx context.Context) *apiclient.Client {
	return s.clients.Client(ctx)
}

// Catalog

func (s *Set) Products(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	return Fetch(ctx, s.cache, productsKey(q), func(ctx context.Context) ([]models.Product, error) {
		return s.api(ctx).ListProducts(ctx, q)
	})
}

func (s *Set) Product(ctx context.Context, id string) (models.Product, error) {
	return Fetch(ctx, s.cache, productKey(id), func(ctx context.Context) (models.Product, error) {
		return s.api(ctx).GetProduct(ctx, id)
	})
}

func (s *Set) Shops(ctx context.Context) ([]models.Shop, error) {
	return Fetch(ctx, s.cache, KeyShops, func(ctx context.Context) ([]models.Shop, error) {
		return s.api(ctx).ListShops(ctx)
	})
}

func (s *Set) Shop(ctx context.Context, id string) (models.Shop, error) {
	return Fetch(ctx, s.cache, shopKey(id), func(ctx context.Context) (models.Shop, error) {
		return s.api(ctx).GetShop(ctx, id)
	})
}

// Buyer

func (s *Set) Orders(ctx context.Context) ([]models.Order, error) {
	return Fetch(ctx, s.cache, KeyOrders, func(ctx context.Context) ([]models.Order, error) {
		return s.api(ctx).ListOrders(ctx)
	})
}

// OrderPlaced drops the cached order list after a checkout.
func (s *Set) OrderPlaced() {
	s.cache.Invalidate(KeyOrders)
}

func (s *Set) Offers(ctx context.Context) ([]models.Offer, error) {
	return Fetch(ctx, s.cache, KeyOffers, func(ctx context.Context) ([]models.Offer, error) {
		return s.api(ctx).ListOffers(ctx)
	})
}

func (s *Set) CreateOffer(ctx context.Context, in models.OfferInput) (models.Offer, error) {
	offer, err := s.api(ctx).CreateOffer(ctx, in)
	if err != nil {
		return models.Offer{}, err
	}
	s.cache.Invalidate(KeyOffers)
	return offer, nil
}

func (s *Set) Notifications(ctx context.Context) ([]models.Notification, error) {
	return Fetch(ctx, s.cache, KeyNotifications, func(ctx context.Context) ([]models.Notification, error) {
		return s.api(ctx).ListNotifications(ctx)
	})
}

func (s *Set) UnreadCount(ctx context.Context) (int, error) {
	return Fetch(ctx, s.cache, KeyUnreadCount, func(ctx context.Context) (int, error) {
		return s.api(ctx).UnreadNotificationCount(ctx)
	})
}

func (s *Set) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.api(ctx).MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(KeyNotifications)
	return nil
}

func (s *Set) Chats(ctx context.Context) ([]models.Chat, error) {
	return Fetch(ctx, s.cache, KeyChats, func(ctx context.Context) ([]models.Chat, error) {
		return s.api(ctx).ListChats(ctx)
	})
}

func (s *Set) StartChat(ctx context.Context, shopID string) (models.Chat, error) {
	chat, err := s.api(ctx).StartChat(ctx, shopID)
	if err != nil {
		return models.Chat{}, err
	}
	s.cache.Invalidate(KeyChats)
	return chat, nil
}

func (s *Set) Messages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	return Fetch(ctx, s.cache, MessagesKey(chatID), func(ctx context.Context) ([]models.ChatMessage, error) {
		return s.api(ctx).ListMessages(ctx, chatID)
	})
}

func (s *Set) SendMessage(ctx context.Context, chatID, content string) (models.ChatMessage, error) {
	msg, err := s.api(ctx).SendMessage(ctx, chatID, content)
	if err != nil {
		return models.ChatMessage{}, err
	}
	s.cache.Invalidate(MessagesKey(chatID))
	s.cache.Invalidate(KeyChats)
	return msg, nil
}

// Owner

func (s *Set) OwnerProducts(ctx context.Context) ([]models.Product, error) {
	return Fetch(ctx, s.cache, KeyOwnerProducts, func(ctx context.Context) ([]models.Product, error) {
		return s.api(ctx).ListOwnerProducts(ctx)
	})
}

func (s *Set) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	p, err := s.api(ctx).CreateProduct(ctx, in)
	if err != nil {
		return models.Product{}, err
	}
	s.productsChanged(p.ID)
	return p, nil
}

func (s *Set) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (models.Product, error) {
	p, err := s.api(ctx).UpdateProduct(ctx, id, in)
	if err != nil {
		return models.Product{}, err
	}
	s.productsChanged(id)
	return p, nil
}

func (s *Set) DeleteProduct(ctx context.Context, id string) error {
	if err := s.api(ctx).DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.productsChanged(id)
	return nil
}

func (s *Set) productsChanged(id string) {
	s.cache.Invalidate(KeyOwnerProducts)
	s.cache.Invalidate(KeyProducts)
	if id != "" {
		s.cache.Invalidate(productKey(id))
	}
}

func (s *Set) OwnerOrders(ctx context.Context) ([]models.Order, error) {
	return Fetch(ctx, s.cache, KeyOwnerOrders, func(ctx context.Context) ([]models.Order, error) {
		return s.api(ctx).ListOwnerOrders(ctx)
	})
}

func (s *Set) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	order, err := s.api(ctx).UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return models.Order{}, err
	}
	s.cache.Invalidate(KeyOwnerOrders)
	return order, nil
}

func (s *Set) OwnerOffers(ctx context.Context) ([]models.Offer, error) {
	return Fetch(ctx, s.cache, KeyOwnerOffers, func(ctx context.Context) ([]models.Offer, error) {
		return s.api(ctx).ListOwnerOffers(ctx)
	})
}

func (s *Set) DecideOffer(ctx context.Context, id string, decision models.OfferDecision) (models.Offer, error) {
	offer, err := s.api(ctx).DecideOffer(ctx, id, decision)
	if err != nil {
		return models.Offer{}, err
	}
	s.cache.Invalidate(KeyOwnerOffers)
	return offer, nil
}

// Admin

func (s *Set) Owners(ctx context.Context, status string) ([]models.UserRecord, error) {
	return Fetch(ctx, s.cache, statusKey(KeyAdminOwners, status), func(ctx context.Context) ([]models.UserRecord, error) {
		return s.api(ctx).ListOwners(ctx, status)
	})
}

func (s *Set) ModerateOwner(ctx context.Context, id string, action apiclient.ApprovalAction) error {
	if err := s.api(ctx).ModerateOwner(ctx, id, action); err != nil {
		return err
	}
	s.cache.Invalidate(KeyAdminOwners)
	s.cache.Invalidate(KeyShops)
	return nil
}

func (s *Set) ModerationProducts(ctx context.Context, status string) ([]models.Product, error) {
	return Fetch(ctx, s.cache, statusKey(KeyAdminProducts, status), func(ctx context.Context) ([]models.Product, error) {
		return s.api(ctx).ListModerationProducts(ctx, status)
	})
}

func (s *Set) ModerateProduct(ctx context.Context, id string, action apiclient.ApprovalAction) error {
	if err := s.api(ctx).ModerateProduct(ctx, id, action); err != nil {
		return err
	}
	s.cache.Invalidate(KeyAdminProducts)
	s.cache.Invalidate(KeyProducts)
	s.cache.Invalidate(productKey(id))
	return nil
}

func (s *Set) Users(ctx context.Context) ([]models.UserRecord, error) {
	return Fetch(ctx, s.cache, KeyAdminUsers, func(ctx context.Context) ([]models.UserRecord, error) {
		return s.api(ctx).ListUsers(ctx)
	})
}

func (s *Set) SetUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	if err := s.api(ctx).SetUserStatus(ctx, id, status); err != nil {
		return err
	}
	s.cache.Invalidate(KeyAdminUsers)
	return nil
}
