package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/internal/webserver"
	"github.com/quickbasket/quickbasket/pkg/common"
)

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/login", login)
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login checks operator credentials and issues a bearer token for the
// admin API.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse login request")
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusOK, "Username and password are required")
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ?", payload.Username).First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	if !strings.EqualFold(opr.Status, common.ENABLED) {
		return fail(c, http.StatusUnauthorized, "Account disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	}

	claims := jwt.MapClaims{
		"uid":      opr.ID,
		"username": opr.Username,
		"level":    opr.Level,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(webserver.AppCtx().Config().Web.Secret))
	if err != nil {
		zap.L().Error("failed to sign token", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   opr.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "admin login",
		OptTime:   time.Now(),
	})

	return okMessage(c, map[string]interface{}{"token": signed}, "login success")
}
