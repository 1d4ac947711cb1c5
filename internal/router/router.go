package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"supashop-api/internal/config"
	"supashop-api/internal/handler"
	"supashop-api/internal/middleware"
	"supashop-api/internal/model"
	"supashop-api/internal/repository"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Profile  *handler.ProfileHandler
	Product  *handler.ProductHandler
	Store    *handler.StoreHandler
	Cart     *handler.CartHandler
	Wishlist *handler.WishlistHandler
	Order    *handler.OrderHandler
	Review   *handler.ReviewHandler
	Waitlist *handler.WaitlistHandler
	Docs     *handler.DocsHandler
	Health   *handler.HealthHandler
}

// New builds the HTTP surface. imageRoot, when set, is served under /images.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, imageRoot string) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM,
		middleware.NewClientIPResolver(cfg.TrustedProxies))

	r.Use(middleware.Recovery)
	r.Use(middleware.Sentry())
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	if imageRoot != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(imageRoot))))
	}

	user := authMiddleware.RequireKind(model.KindUser)
	merchant := authMiddleware.RequireKind(model.KindMerchant)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register(model.KindUser))
			auth.Post("/login", h.Auth.Login(model.KindUser))
			auth.Post("/forgot-password", h.Auth.ForgotPassword(model.KindUser))
			auth.Post("/reset-password", h.Auth.ResetPassword(model.KindUser))
		})
		api.Get("/verify-mail/{email}", h.Auth.SendVerification(model.KindUser))
		api.Post("/verify-mail", h.Auth.Verify(model.KindUser))
		api.Get("/refresh", h.Auth.Refresh(model.KindUser))
		api.Get("/refresh/merchant", h.Auth.Refresh(model.KindMerchant))
		api.Get("/logout", h.Auth.Logout(model.KindUser))
		api.Get("/logout/merchant", h.Auth.Logout(model.KindMerchant))

		api.Route("/merchant", func(m chi.Router) {
			m.Route("/auth", func(auth chi.Router) {
				auth.Post("/register", h.Auth.Register(model.KindMerchant))
				auth.Post("/login", h.Auth.Login(model.KindMerchant))
				auth.Post("/forgot-password", h.Auth.ForgotPassword(model.KindMerchant))
				auth.Post("/reset-password", h.Auth.ResetPassword(model.KindMerchant))
				auth.Get("/verify-mail/{email}", h.Auth.SendVerification(model.KindMerchant))
				auth.Post("/verify-mail", h.Auth.Verify(model.KindMerchant))
			})

			m.Group(func(owner chi.Router) {
				owner.Use(merchant)

				owner.Patch("/profile", h.Profile.Update(model.KindMerchant))
				owner.Put("/profile/password", h.Profile.ChangePassword(model.KindMerchant))
				owner.Delete("/profile", h.Profile.Delete(model.KindMerchant))
				owner.Post("/profile/dp", h.Profile.SetPicture(model.KindMerchant))
				owner.Delete("/profile/dp", h.Profile.DeletePicture(model.KindMerchant))

				owner.Post("/products", h.Product.Create)
				owner.Get("/products", h.Product.MerchantList)
				owner.Get("/products/{id}", h.Product.MerchantGet)
				owner.Put("/products/{id}", h.Product.Update)
				owner.Delete("/products/{id}", h.Product.Delete)
				owner.Post("/products/{id}/dp", h.Product.SetPicture)
				owner.Post("/products/{id}/images", h.Product.AddImage)
				owner.Delete("/products/{id}/images", h.Product.RemoveImage)
			})
		})

		api.Get("/users/{id}", h.Profile.PublicUser)

		api.Get("/products", h.Product.List)
		api.Get("/products/category/{category}", h.Product.ListByCategory)
		api.Get("/products/{id}", h.Product.Get)
		api.Get("/categories", h.Product.Categories)

		api.Get("/stores", h.Store.List)
		api.Get("/stores/featured", h.Store.Featured)
		api.Get("/stores/category", h.Store.ByCategory)
		api.Get("/stores/{id}", h.Store.Get)
		api.Get("/stores/{id}/products", h.Store.Products)

		api.Post("/waitlist", h.Waitlist.Join)

		api.Group(func(u chi.Router) {
			u.Use(user)

			u.Patch("/profile", h.Profile.Update(model.KindUser))
			u.Put("/profile/password", h.Profile.ChangePassword(model.KindUser))
			u.Delete("/profile", h.Profile.Delete(model.KindUser))
			u.Post("/profile/dp", h.Profile.SetPicture(model.KindUser))
			u.Delete("/profile/dp", h.Profile.DeletePicture(model.KindUser))

			u.Post("/cart", h.Cart.Add)
			u.Get("/cart", h.Cart.List)
			u.Put("/cart/{id}", h.Cart.ChangeQuantity)
			u.Delete("/cart/{id}", h.Cart.Remove)

			u.Post("/wishlist", h.Wishlist.Add)
			u.Get("/wishlist", h.Wishlist.List)
			u.Delete("/wishlist/{id}", h.Wishlist.Remove)
			u.Delete("/wishlist", h.Wishlist.Clear)

			u.Post("/orders", h.Order.Place)
			u.Get("/orders", h.Order.List)

			u.Post("/reviews/products/{id}", h.Review.Add(repository.ReviewProduct))
			u.Delete("/reviews/products/{id}", h.Review.Remove(repository.ReviewProduct))
			u.Post("/reviews/stores/{id}", h.Review.Add(repository.ReviewStore))
			u.Delete("/reviews/stores/{id}", h.Review.Remove(repository.ReviewStore))
		})
	})

	return r
}
