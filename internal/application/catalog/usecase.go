package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// CatalogUseCase casos de uso de los catálogos de referencia que consume el
// núcleo de movimientos: artículos, ubicaciones y bodegas.
type CatalogUseCase struct {
	itemRepo      repository.ItemRepository
	locationRepo  repository.LocationRepository
	warehouseRepo repository.WarehouseRepository
}

// NewCatalogUseCase construye el caso de uso de catálogos.
func NewCatalogUseCase(
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	warehouseRepo repository.WarehouseRepository,
) *CatalogUseCase {
	return &CatalogUseCase{
		itemRepo:      itemRepo,
		locationRepo:  locationRepo,
		warehouseRepo: warehouseRepo,
	}
}

// ── Artículos ─────────────────────────────────────────────────────────────────

// CreateItem crea un artículo del catálogo. SKU requerido, único por empresa.
func (uc *CatalogUseCase) CreateItem(companyID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		SKU:           in.SKU,
		Name:          in.Name,
		UnitOfMeasure: in.UnitOfMeasure,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetItem obtiene un artículo verificando pertenencia.
func (uc *CatalogUseCase) GetItem(companyID, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toItemResponse(item), nil
}

// ListItems lista artículos de la empresa con el sobre de paginación.
func (uc *CatalogUseCase) ListItems(companyID string, page dto.PageRequest) (*dto.Page, error) {
	page.Normalize()
	list, total, err := uc.itemRepo.ListByCompany(companyID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	content := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		content = append(content, *toItemResponse(it))
	}
	out := dto.NewPage(content, total, page)
	return &out, nil
}

// ── Ubicaciones ───────────────────────────────────────────────────────────────

// CreateLocation crea una ubicación dentro de una bodega de la empresa.
func (uc *CatalogUseCase) CreateLocation(companyID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.WarehouseID == "" || in.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		WarehouseID: in.WarehouseID,
		Code:        in.Code,
		Name:        in.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.locationRepo.Create(loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista ubicaciones de una bodega de la empresa.
func (uc *CatalogUseCase) ListLocations(companyID, warehouseID string, page dto.PageRequest) (*dto.Page, error) {
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	page.Normalize()
	list, total, err := uc.locationRepo.ListByWarehouse(warehouseID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	content := make([]dto.LocationResponse, 0, len(list))
	for _, loc := range list {
		content = append(content, *toLocationResponse(loc))
	}
	out := dto.NewPage(content, total, page)
	return &out, nil
}

// ── Bodegas ───────────────────────────────────────────────────────────────────

// CreateWarehouse crea una bodega de la empresa.
func (uc *CatalogUseCase) CreateWarehouse(companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	wh := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.warehouseRepo.Create(wh); err != nil {
		return nil, err
	}
	return toWarehouseResponse(wh), nil
}

// GetWarehouse obtiene una bodega verificando pertenencia.
func (uc *CatalogUseCase) GetWarehouse(companyID, id string) (*dto.WarehouseResponse, error) {
	wh, err := uc.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toWarehouseResponse(wh), nil
}

// ListWarehouses lista bodegas de la empresa.
func (uc *CatalogUseCase) ListWarehouses(companyID string, page dto.PageRequest) (*dto.Page, error) {
	page.Normalize()
	list, total, err := uc.warehouseRepo.ListByCompany(companyID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	content := make([]dto.WarehouseResponse, 0, len(list))
	for _, wh := range list {
		content = append(content, *toWarehouseResponse(wh))
	}
	out := dto.NewPage(content, total, page)
	return &out, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:            it.ID,
		CompanyID:     it.CompanyID,
		SKU:           it.SKU,
		Name:          it.Name,
		UnitOfMeasure: it.UnitOfMeasure,
		Active:        it.Active,
		CreatedAt:     it.CreatedAt,
	}
}

func toLocationResponse(loc *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          loc.ID,
		CompanyID:   loc.CompanyID,
		WarehouseID: loc.WarehouseID,
		Code:        loc.Code,
		Name:        loc.Name,
		CreatedAt:   loc.CreatedAt,
	}
}

func toWarehouseResponse(wh *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        wh.ID,
		CompanyID: wh.CompanyID,
		Name:      wh.Name,
		Address:   wh.Address,
		CreatedAt: wh.CreatedAt,
	}
}
