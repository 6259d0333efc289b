package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePromoCode(t *testing.T) {
	for _, typ := range []RewardType{RewardTypeDrink, RewardTypeDessert, RewardTypeDiscount, RewardTypeCustom} {
		code := GeneratePromoCode(typ)
		assert.Regexp(t, PromoCodePattern, code)
		assert.Equal(t, string(typ)[:3], code[:3])
	}
}

func TestPromoCodePattern(t *testing.T) {
	assert.True(t, PromoCodePattern.MatchString("DRI00042"))
	assert.True(t, PromoCodePattern.MatchString("XYZ1"))
	assert.False(t, PromoCodePattern.MatchString("dri00042"))
	assert.False(t, PromoCodePattern.MatchString("DR00042"))
	assert.False(t, PromoCodePattern.MatchString("DRINK"))
	assert.False(t, PromoCodePattern.MatchString(""))
}

func TestPromotionInWindow(t *testing.T) {
	promo := Promotion{ValidFrom: "2026-09-01", ValidTo: "2026-09-30"}

	assert.True(t, promo.InWindow("2026-09-01"))
	assert.True(t, promo.InWindow("2026-09-15"))
	assert.True(t, promo.InWindow("2026-09-30"))
	assert.False(t, promo.InWindow("2026-08-31"))
	assert.False(t, promo.InWindow("2026-10-01"))
}
