package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/jwt"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

const testSecret = "secreto-de-test-auth"

func newUseCase() (*auth.AuthUseCase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "almacen-api-test",
	})
	return uc, repo
}

func TestRegisterUser_SiempreOperario(t *testing.T) {
	uc, _ := newUseCase()

	// Aunque el body traiga un rol, el registro público lo ignora: el campo ni
	// siquiera se deserializa y todo usuario nuevo entra como operario.
	body := []byte(`{"company_id":"co-1","email":"nuevo@test.cl","password":"secreta123","role":"admin"}`)
	var in dto.RegisterRequest
	require.NoError(t, json.Unmarshal(body, &in))

	out, err := uc.RegisterUser(in)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperario, out.Role,
		"el registro público nunca puede auto-otorgar un rol privilegiado")
	assert.Equal(t, "active", out.Status)
	assert.Equal(t, "nuevo@test.cl", out.Name, "sin nombre explícito se usa el email")
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newUseCase()

	_, err := uc.RegisterUser(dto.RegisterRequest{CompanyID: "co-1", Email: "dup@test.cl", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{CompanyID: "co-1", Email: "dup@test.cl", Password: "otraclave99"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_EmiteTokenConRolDelUsuario(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.RegisterUser(dto.RegisterRequest{CompanyID: "co-1", Email: "op@test.cl", Password: "secreta123"})
	require.NoError(t, err)

	out, err := uc.Login(dto.LoginRequest{Email: "op@test.cl", Password: "secreta123"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Token)

	_, companyID, role, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "co-1", companyID)
	assert.Equal(t, entity.RoleOperario, role, "el claim de rol sale del usuario persistido, no del request")
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.RegisterUser(dto.RegisterRequest{CompanyID: "co-1", Email: "op@test.cl", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "op@test.cl", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, repo := newUseCase()
	out, err := uc.RegisterUser(dto.RegisterRequest{CompanyID: "co-1", Email: "baja@test.cl", Password: "secreta123"})
	require.NoError(t, err)
	repo.users[out.ID].Status = "inactive"

	_, err = uc.Login(dto.LoginRequest{Email: "baja@test.cl", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.Login(dto.LoginRequest{Email: "nadie@test.cl", Password: "loquesea"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
