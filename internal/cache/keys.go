package cache

import (
	"fmt"
	"strings"
)

// Key builders. Every filter and pagination parameter of a read is embedded
// positionally so distinct query shapes never share a key. Each shape that
// embeds a caller-supplied id owns a prefix no other shape starts with, and
// ends with a fixed suffix or an integer, so no id can reach another shape.

func MerchantProductsKey(merchantID string, skip int) string {
	return fmt.Sprintf("merchant:%s:products:skip:%d", merchantID, skip)
}

func ProductKey(id string) string {
	return "product:id" + id
}

func ProductsKey(skip int) string {
	return fmt.Sprintf("products:skip:%d", skip)
}

func ProductsByCategoryKey(category string, skip int) string {
	return fmt.Sprintf("products:category:%s:skip:%d", strings.ToUpper(category), skip)
}

func CategoriesKey() string {
	return "categories"
}

func StoresKey(skip int) string {
	return fmt.Sprintf("store:skip:%d", skip)
}

func FeaturedStoresKey(skip int) string {
	return fmt.Sprintf("store:skip:%d:isFeatured", skip)
}

func StoreKey(id string) string {
	return "store:id:" + id
}

func StoresByCategoryKey(category string, skip int) string {
	return fmt.Sprintf("stores:category:%s:skip:%d", strings.ToUpper(category), skip)
}

func StoreProductsKey(storeID string, skip int) string {
	return fmt.Sprintf("store:products:%s:skip:%d", storeID, skip)
}

func WishlistKey(userID string) string {
	return "wishlist:user:" + userID
}
