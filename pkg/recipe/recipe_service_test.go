package recipe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"Pantry-Service/domain"
	"Pantry-Service/entities"
	"Pantry-Service/pkg/inference"
	"Pantry-Service/pkg/matcher"
	"Pantry-Service/pkg/stock"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type stubSuggester struct {
	got     []inference.PantryItem
	recipes []domain.GeneratedRecipe
	err     error
}

func (s *stubSuggester) SuggestRecipes(_ context.Context, items []inference.PantryItem, _ inference.Preferences) ([]domain.GeneratedRecipe, error) {
	s.got = items
	return s.recipes, s.err
}

type sentMail struct {
	to, subject, body string
}

type stubMailer struct {
	sent []sentMail
}

func (m *stubMailer) SendMail(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type testEnv struct {
	svc       *recipeService
	db        *gorm.DB
	stock     stock.StockRepository
	suggester *stubSuggester
	mailer    *stubMailer
	owner     uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entities.StockItem{}, &entities.Recipe{}, &entities.RecipeHistory{}))

	env := &testEnv{
		db:        db,
		stock:     stock.NewStockRepository(db),
		suggester: &stubSuggester{},
		mailer:    &stubMailer{},
		owner:     uuid.New(),
	}
	env.svc = NewRecipeService(NewRecipeRepository(db), env.stock, env.suggester, env.mailer, nil).(*recipeService)
	env.svc.now = func() time.Time { return testNow }
	env.svc.deductor.now = env.svc.now
	return env
}

func (e *testEnv) addStock(t *testing.T, name string, qty float64, expiry *time.Time) *entities.StockItem {
	t.Helper()
	item := &entities.StockItem{
		UserID:         e.owner,
		Name:           name,
		NormalizedName: matcher.NormalizeName(name),
		Location:       domain.LocationFridge,
		Quantity:       qty,
		ExpiryDate:     expiry,
		Freshness:      domain.FreshnessFresh,
	}
	require.NoError(t, e.stock.CreateStockItem(context.Background(), item))
	return item
}

func (e *testEnv) addRecipe(t *testing.T, title string, servings int, ings ...domain.IngredientRequirement) string {
	t.Helper()
	detail, err := e.svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Title:        title,
		Servings:     servings,
		Ingredients:  ings,
		Instructions: []string{"cook"},
	}, e.owner.String())
	require.NoError(t, err)
	return detail.ID
}

func TestRecipeServiceCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.addRecipe(t, "Pancakes", 2,
		need("flour", "1 1/2"),
		domain.IngredientRequirement{Name: "syrup", Quantity: 1, Optional: true},
	)

	detail, err := env.svc.GetRecipeDetail(ctx, id, env.owner.String())
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", detail.Title)
	assert.Equal(t, 2, detail.Servings)
	require.Len(t, detail.Ingredients, 2)
	assert.Equal(t, "1 1/2", detail.Ingredients[0].Quantity)
	assert.True(t, detail.Ingredients[1].Optional)
	assert.Equal(t, []string{"cook"}, detail.Instructions)

	_, err = env.svc.GetRecipeDetail(ctx, id, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = env.svc.GetRecipeDetail(ctx, "not-a-uuid", env.owner.String())
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, count, err := env.svc.GetRecipes(ctx, 1, 10, env.owner.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, list, 1)
}

func TestRecipeServiceCheckInventory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	eggs := env.addStock(t, "Eggs", 3, nil)
	omelette := env.addRecipe(t, "Omelette", 2,
		need("egg", 2),
		need("milk", 1),
		domain.IngredientRequirement{Name: "salt", Quantity: "a pinch", Optional: true},
	)
	friedEgg := env.addRecipe(t, "Fried egg", 1, need("egg", "1"))

	res, err := env.svc.CheckInventory(ctx, domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{
		{RecipeID: omelette, Servings: 2},
		{RecipeID: friedEgg, Servings: 2},
	}}, env.owner.String())
	require.NoError(t, err)

	require.Len(t, res.Recipes, 2)
	require.Len(t, res.Recipes[0].Ingredients, 2)

	egg := res.Recipes[0].Ingredients[0]
	assert.Equal(t, domain.StatusAvailable, egg.Status)
	assert.Equal(t, "Eggs", egg.MatchedItem)
	assert.Equal(t, 3.0, egg.AvailableQty)

	assert.Equal(t, domain.StatusMissing, res.Recipes[0].Ingredients[1].Status)

	second := res.Recipes[1].Ingredients[0]
	assert.Equal(t, domain.StatusPartial, second.Status)
	assert.Equal(t, 2.0, second.RequiredQty)
	assert.Equal(t, 1.0, second.AvailableQty)
	assert.Equal(t, 1.0, second.Shortage)

	assert.True(t, res.HasShortages)
	assert.Equal(t, []domain.Shortage{
		{Name: "milk", Quantity: 1, Unit: "pcs"},
		{Name: "egg", Quantity: 1, Unit: "pcs"},
	}, res.TotalShortages)

	// dry run leaves stock untouched
	got, err := env.stock.GetStockItemByID(ctx, env.owner.String(), eggs.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Quantity)
	assert.Equal(t, 1, got.Version)
}

func TestRecipeServiceCheckInventoryRejectsInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.addRecipe(t, "Toast", 1, need("bread", 1))

	_, err := env.svc.CheckInventory(ctx, domain.CheckInventoryRequest{}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.CheckInventory(ctx, domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{
		{RecipeID: id, Servings: -1},
	}}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrInvalidServings)

	_, err = env.svc.CheckInventory(ctx, domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{
		{RecipeID: uuid.NewString(), Servings: 1},
	}}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestRecipeServiceMarkAsCooked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	eggs := env.addStock(t, "eggs", 6, nil)
	milk := env.addStock(t, "whole milk", 1, nil)
	id := env.addRecipe(t, "Omelette", 2, need("egg", 2), need("milk", 1), need("saffron", 1))

	res, err := env.svc.MarkAsCooked(ctx, id, domain.MarkAsCookedRequest{ServingsCooked: 4}, env.owner.String())
	require.NoError(t, err)

	assert.Equal(t, 1, res.TimesCooked)
	assert.Equal(t, []string{"egg", "milk"}, res.InventoryUpdated.Deducted)
	assert.Equal(t, []string{"saffron"}, res.InventoryUpdated.NotFound)
	assert.Empty(t, res.Errors)

	gotEggs, err := env.stock.GetStockItemByID(ctx, env.owner.String(), eggs.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2.0, gotEggs.Quantity)

	_, err = env.stock.GetStockItemByID(ctx, env.owner.String(), milk.ID.String())
	assert.ErrorIs(t, err, domain.ErrStockItemNotFound)

	detail, err := env.svc.GetRecipeDetail(ctx, id, env.owner.String())
	require.NoError(t, err)
	assert.Equal(t, 1, detail.TimesCooked)
	require.NotNil(t, detail.LastCookedAt)

	history, err := env.svc.GetRecipeHistory(ctx, 1, 10, env.owner.String())
	require.NoError(t, err)
	require.Equal(t, 1, history.Total)
	entry := history.History[0]
	assert.Equal(t, "Omelette", entry.RecipeTitle)
	assert.Equal(t, 4.0, entry.ServingsCooked)
	assert.Equal(t, 2, entry.DeductedCount)
	assert.Equal(t, 1, entry.MissingCount)

	// cooking again with zero servings uses the recipe's own servings
	res, err = env.svc.MarkAsCooked(ctx, id, domain.MarkAsCookedRequest{}, env.owner.String())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TimesCooked)
	assert.Equal(t, []string{"egg"}, res.InventoryUpdated.Deducted)
	assert.Equal(t, []string{"milk", "saffron"}, res.InventoryUpdated.NotFound)
}

func TestRecipeServiceMarkAsCookedUnknownRecipe(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.MarkAsCooked(context.Background(), uuid.NewString(), domain.MarkAsCookedRequest{}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = env.svc.MarkAsCooked(context.Background(), uuid.NewString(), domain.MarkAsCookedRequest{ServingsCooked: -2}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrInvalidServings)
}

func TestRecipeServiceRecommendations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	soon := testNow.AddDate(0, 0, 1)
	later := testNow.AddDate(0, 0, 20)
	env.addStock(t, "spinach", 1, &soon)
	env.addStock(t, "rice", 2, &later)
	env.addStock(t, "empty jar", 0, nil)

	env.suggester.recipes = []domain.GeneratedRecipe{
		{Title: "Spinach rice", Servings: 2, Ingredients: []domain.IngredientRequirement{need("spinach", 1)}},
		{Title: ""},
	}

	res, err := env.svc.GetRecipeRecommendations(ctx, domain.RecipeRecommendationRequest{IncludeExpiringOnly: true}, env.owner.String())
	require.NoError(t, err)

	require.Len(t, env.suggester.got, 1)
	assert.Equal(t, "spinach", env.suggester.got[0].Name)
	require.NotNil(t, env.suggester.got[0].DaysUntilExpiry)
	assert.Equal(t, 1, *env.suggester.got[0].DaysUntilExpiry)

	assert.Equal(t, 1, res.ExpiringItems)
	require.Equal(t, 1, res.TotalRecipes)
	assert.True(t, res.Recipes[0].IsGenerated)

	_, count, err := env.svc.GetRecipes(ctx, 1, 10, env.owner.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	env.suggester.err = errors.New("boom")
	_, err = env.svc.GetRecipeRecommendations(ctx, domain.RecipeRecommendationRequest{}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailed)
}

func TestRecipeServiceRecommendationsWithoutStock(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetRecipeRecommendations(context.Background(), domain.RecipeRecommendationRequest{}, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrNoIngredients)
	assert.Nil(t, env.suggester.got)
}

func TestRecipeServiceEmailShoppingList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addStock(t, "butter", 1, nil)
	id := env.addRecipe(t, "Cookies <3", 1, need("butter", 1), need("brown sugar", 2))

	err := env.svc.EmailShoppingList(ctx, domain.EmailShoppingListRequest{
		CheckInventoryRequest: domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{{RecipeID: id, Servings: 1}}},
		Email:                 "cook@example.com",
	}, env.owner.String())
	require.NoError(t, err)

	require.Len(t, env.mailer.sent, 1)
	mail := env.mailer.sent[0]
	assert.Equal(t, "cook@example.com", mail.to)
	assert.Equal(t, shoppingListSubject, mail.subject)
	assert.Contains(t, mail.body, "brown sugar: 2 pcs")
	assert.Contains(t, mail.body, "Cookies &lt;3")
	assert.NotContains(t, mail.body, "butter")
}

func TestRecipeServiceEmailShoppingListNothingMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addStock(t, "bread", 2, nil)
	id := env.addRecipe(t, "Toast", 1, need("bread", 1))
	req := domain.EmailShoppingListRequest{
		CheckInventoryRequest: domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{{RecipeID: id, Servings: 1}}},
		Email:                 "cook@example.com",
	}

	err := env.svc.EmailShoppingList(ctx, req, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrNoShortages)
	assert.Empty(t, env.mailer.sent)

	env.svc.mailer = nil
	err = env.svc.EmailShoppingList(ctx, req, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrMailerUnavailable)
}

func TestRecipeServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.addRecipe(t, "Soup", 4, need("water", 1))

	require.NoError(t, env.svc.DeleteRecipe(ctx, id, env.owner.String()))
	assert.ErrorIs(t, env.svc.DeleteRecipe(ctx, id, env.owner.String()), domain.ErrRecipeNotFound)

	_, err := env.svc.GetRecipeDetail(ctx, id, env.owner.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestRecipeServiceCookingThirdsConsumesStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	flour := env.addStock(t, "flour", 1, nil)
	id := env.addRecipe(t, "Flatbread", 3, need("flour", 1))

	for i := 0; i < 3; i++ {
		res, err := env.svc.MarkAsCooked(ctx, id, domain.MarkAsCookedRequest{ServingsCooked: 1}, env.owner.String())
		require.NoError(t, err)
		assert.Equal(t, []string{"flour"}, res.InventoryUpdated.Deducted, "cook %d", i+1)
	}

	_, err := env.stock.GetStockItemByID(ctx, env.owner.String(), flour.ID.String())
	assert.ErrorIs(t, err, domain.ErrStockItemNotFound)

	check, err := env.svc.CheckInventory(ctx, domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{
		{RecipeID: id, Servings: 3},
	}}, env.owner.String())
	require.NoError(t, err)
	got := check.Recipes[0].Ingredients[0]
	assert.Equal(t, domain.StatusMissing, got.Status)
	assert.Empty(t, got.MatchedItem)
	assert.Equal(t, 1.0, got.Shortage)
}

// loadBarrier holds every GetRecipeByID until n callers have loaded the recipe.
type loadBarrier struct {
	RecipeRepository
	wg *sync.WaitGroup
}

func (b *loadBarrier) GetRecipeByID(ctx context.Context, userID, id string) (*entities.Recipe, error) {
	recipe, err := b.RecipeRepository.GetRecipeByID(ctx, userID, id)
	b.wg.Done()
	b.wg.Wait()
	return recipe, err
}

func TestRecipeServiceMarkAsCookedConcurrently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	eggs := env.addStock(t, "eggs", 10, nil)
	id := env.addRecipe(t, "Omelette", 2, need("egg", 2))

	loaded := &sync.WaitGroup{}
	loaded.Add(2)
	env.svc.recipeRepository = &loadBarrier{RecipeRepository: env.svc.recipeRepository, wg: loaded}

	var wg sync.WaitGroup
	counts := make([]int, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := env.svc.MarkAsCooked(ctx, id, domain.MarkAsCookedRequest{}, env.owner.String())
			counts[i], errs[i] = res.TimesCooked, err
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ElementsMatch(t, []int{1, 2}, counts)

	var stored entities.Recipe
	require.NoError(t, env.db.First(&stored, "id = ?", id).Error)
	assert.Equal(t, 2, stored.TimesCooked)

	gotEggs, err := env.stock.GetStockItemByID(ctx, env.owner.String(), eggs.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 6.0, gotEggs.Quantity)
}

func TestRecipeServiceCorruptIngredients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	eggs := env.addStock(t, "eggs", 6, nil)
	id := env.addRecipe(t, "Omelette", 2, need("egg", 2))
	require.NoError(t, env.db.Model(&entities.Recipe{}).Where("id = ?", id).
		Update("ingredients", "{not json").Error)

	_, err := env.svc.MarkAsCooked(ctx, id, domain.MarkAsCookedRequest{}, env.owner.String())
	require.Error(t, err)

	_, err = env.svc.CheckInventory(ctx, domain.CheckInventoryRequest{Recipes: []domain.RecipeServings{
		{RecipeID: id, Servings: 2},
	}}, env.owner.String())
	require.Error(t, err)

	_, err = env.svc.GetRecipeDetail(ctx, id, env.owner.String())
	require.Error(t, err)

	var stored entities.Recipe
	require.NoError(t, env.db.First(&stored, "id = ?", id).Error)
	assert.Zero(t, stored.TimesCooked)

	gotEggs, err := env.stock.GetStockItemByID(ctx, env.owner.String(), eggs.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 6.0, gotEggs.Quantity)
}
