package resources

import (
	"net/url"
	"strconv"

	"junkmart/web/internal/models"
)

const (
	KeyProducts           = "products"
	KeyShops              = "shops"
	KeyOrders             = "orders"
	KeyOffers             = "offers"
	KeyNotifications      = "notifications"
	KeyUnreadCount        = "notifications/unread-count"
	KeyChats              = "chats"
	KeyOwnerProducts      = "owner/products"
	KeyOwnerOrders        = "owner/orders"
	KeyOwnerOffers        = "owner/offers"
	KeyAdminOwners        = "admin/owners"
	KeyAdminProducts      = "admin/products"
	KeyAdminUsers         = "admin/users"
	keyProductPrefix      = "product/"
	keyShopPrefix         = "shop/"
	keyChatMessagesPrefix = "chat/"
)

func productsKey(q models.ProductQuery) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.ShopID != "" {
		v.Set("shopId", q.ShopID)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if len(v) == 0 {
		return KeyProducts
	}
	return KeyProducts + "?" + v.Encode()
}

func statusKey(base, status string) string {
	if status == "" {
		return base
	}
	return base + "?status=" + url.QueryEscape(status)
}

func productKey(id string) string { return keyProductPrefix + id }

func shopKey(id string) string { return keyShopPrefix + id }

// MessagesKey names the cached message list of one chat.
func MessagesKey(chatID string) string { return keyChatMessagesPrefix + chatID + "/messages" }
