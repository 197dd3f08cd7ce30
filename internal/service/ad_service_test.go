package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

func newAdServiceForTest(t *testing.T) (*AdService, *memDB) {
	t.Helper()
	db := newMemDB()
	db.brands["brand-2"] = models.Brand{ID: "brand-2", Name: "Banking Digest"}
	db.editions["ed-9"] = models.Edition{ID: "ed-9", BrandID: "brand-2", Name: "Q1"}
	return NewAdService(memAds{db}, memCatalog{db}, newTestAttachments(t), zap.NewNop()), db
}

func TestAdServiceUploadAndGroup(t *testing.T) {
	svc, _ := newAdServiceForTest(t)
	ctx := context.Background()

	ads, err := svc.Upload(ctx, "u-sales", dto.AdUploadRequest{BrandID: "brand-1"}, []FileUpload{
		textUpload("full page.psd", "psd"),
		textUpload("banner.png", "png"),
	})
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, "full page.psd", ads[0].OriginalFilename)
	assert.Equal(t, "psd", ads[0].FileType)

	groups, err := svc.ListGrouped(ctx, "")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "CIO Review", groups[0].Brand.Name)
	assert.Len(t, groups[0].Ads, 2)

	link, err := svc.DownloadLink(ctx, ads[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "banner.png", link.OriginalFilename)
}

func TestAdServiceUploadRejections(t *testing.T) {
	svc, _ := newAdServiceForTest(t)
	ctx := context.Background()
	files := []FileUpload{textUpload("a.pdf", "x")}

	_, err := svc.Upload(ctx, "u-sales", dto.AdUploadRequest{}, files)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upload(ctx, "u-sales", dto.AdUploadRequest{BrandID: "nope"}, files)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upload(ctx, "u-sales", dto.AdUploadRequest{BrandID: "brand-1"}, []FileUpload{textUpload("a.docx", "x")})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upload(ctx, "u-sales", dto.AdUploadRequest{BrandID: "brand-1"}, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAdServiceAssignEdition(t *testing.T) {
	svc, db := newAdServiceForTest(t)
	ctx := context.Background()
	ads, err := svc.Upload(ctx, "u-sales", dto.AdUploadRequest{BrandID: "brand-1"}, []FileUpload{textUpload("a.pdf", "x")})
	require.NoError(t, err)
	id := ads[0].ID

	other := "ed-9"
	_, err = svc.AssignEdition(ctx, id, dto.AdEditionRequest{EditionID: &other})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	edition := "ed-2"
	ad, err := svc.AssignEdition(ctx, id, dto.AdEditionRequest{EditionID: &edition})
	require.NoError(t, err)
	assert.Equal(t, "ed-2", *ad.EditionID)

	ad, err = svc.AssignEdition(ctx, id, dto.AdEditionRequest{})
	require.NoError(t, err)
	assert.Nil(t, ad.EditionID)
	assert.Nil(t, db.ads[id].EditionID)

	_, err = svc.AssignEdition(ctx, "missing", dto.AdEditionRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
