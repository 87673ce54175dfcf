package auth_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmorales/puntoventa-api/internal/application/auth"
	"github.com/dmorales/puntoventa-api/internal/application/dto"
	"github.com/dmorales/puntoventa-api/internal/domain"
	"github.com/dmorales/puntoventa-api/internal/domain/entity"
)

type memUserRepo struct {
	users        map[string]*entity.User // por email
	findErr      error
	createdCount int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.users[u.Email] = u
	r.createdCount++
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.users[email], nil
}

func newAuthUseCase(repo *memUserRepo) *auth.AuthUseCase {
	return auth.NewAuthUseCase(repo, auth.JWTConfig{
		Secret:     "secreto-de-test",
		ExpMinutes: 60,
		Issuer:     "puntoventa-test",
	})
}

func TestRegisterUser_CreaOperadorConDefaults(t *testing.T) {
	repo := newMemUserRepo()
	uc := newAuthUseCase(repo)

	out, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "clave123"})
	require.NoError(t, err)

	assert.Equal(t, "ana@negocio.co", out.Email)
	assert.Equal(t, "ana@negocio.co", out.Name, "sin nombre usa el email")
	assert.Equal(t, entity.RoleCajero, out.Role, "rol por defecto")

	stored := repo.users["ana@negocio.co"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "clave123", stored.PasswordHash, "el password nunca se guarda en claro")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave123")))
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	repo := newMemUserRepo()
	uc := newAuthUseCase(repo)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "clave123"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_ErrorDelStore_SePropaga(t *testing.T) {
	repo := newMemUserRepo()
	repo.findErr = errors.New("conexión perdida")
	uc := newAuthUseCase(repo)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "clave123"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "conexión perdida",
		"un store caído no puede leerse como email disponible")
	assert.Zero(t, repo.createdCount, "no se crea nada si la verificación de email falla")
}

func TestRegisterUser_RolInvalido(t *testing.T) {
	uc := newAuthUseCase(newMemUserRepo())
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "x@y.co", Password: "p", Role: "superusuario"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_CredencialesValidas(t *testing.T) {
	repo := newMemUserRepo()
	uc := newAuthUseCase(repo)
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "clave123", Role: entity.RoleAdmin})
	require.NoError(t, err)

	out, err := uc.Login(dto.LoginRequest{Email: "ana@negocio.co", Password: "clave123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	repo := newMemUserRepo()
	uc := newAuthUseCase(repo)
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "clave123"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "ana@negocio.co", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	repo := newMemUserRepo()
	uc := newAuthUseCase(repo)
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@negocio.co", Password: "clave123"})
	require.NoError(t, err)
	repo.users["ana@negocio.co"].Status = "inactive"

	_, err = uc.Login(dto.LoginRequest{Email: "ana@negocio.co", Password: "clave123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
