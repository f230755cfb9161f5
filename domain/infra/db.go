package infra

import (
	"os"
	"path"
	"strings"

	"github.com/enqbot/enqbot/domain/model"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
)

type DataBase struct {
	db *gorm.DB
}

func NewDataBase() (*DataBase, error) {
	dbpath := "./db/enqbot.db"
	if os.Getenv("DB_PATH") != "" {
		dbpath = os.Getenv("DB_PATH")
	}
	if !path.IsAbs(dbpath) {
		dbpath = path.Join(os.Getenv("PWD"), dbpath)
	}
	db, err := gorm.Open("sqlite3", dbpath)
	if err != nil {
		return nil, err
	}
	db.AutoMigrate(&model.Post{})
	db.AutoMigrate(&model.Answer{})
	db.AutoMigrate(&model.User{})
	db.AutoMigrate(&model.Room{})
	return &DataBase{db: db}, nil
}

// 同時に同じキーが登録されてもunique indexで弾かれるので、重複エラーは登録済みとして扱う
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *DataBase) EnsureUser(userID string) error {
	if userID == "" {
		return nil
	}
	user := model.User{UserID: userID}
	err := d.db.Where(model.User{UserID: userID}).FirstOrCreate(&user).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (d *DataBase) EnsureRoom(roomID string) error {
	if roomID == "" {
		return nil
	}
	room := model.Room{RoomID: roomID}
	err := d.db.Where(model.Room{RoomID: roomID}).FirstOrCreate(&room).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (d *DataBase) SavePost(post *model.Post) error {
	err := d.db.Create(post).Error
	// 再配信で同じpostIdが届いても初回の記録を保持する
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (d *DataBase) SaveAnswer(answer *model.Answer) error {
	if answer.AnswerID == "" {
		answer.AnswerID = uuid.New().String()
	}
	return d.db.Create(answer).Error
}

func (d *DataBase) GetPost(postID string) (*model.Post, error) {
	var post model.Post
	err := d.db.Where("post_id = ?", postID).First(&post).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (d *DataBase) GetUser(userID string) (*model.User, error) {
	var user model.User
	err := d.db.Where("user_id = ?", userID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DataBase) GetRoom(roomID string) (*model.Room, error) {
	var room model.Room
	err := d.db.Where("room_id = ?", roomID).First(&room).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *DataBase) GetPollResult(postID string) (*model.PollResult, error) {
	var result model.PollResult
	if err := d.db.Model(&model.Answer{}).
		Where("poll_post_id = ? AND answer_value = ?", postID, model.AnswerOK).
		Count(&result.OK).Error; err != nil {
		return nil, err
	}
	if err := d.db.Model(&model.Answer{}).
		Where("poll_post_id = ? AND answer_value = ?", postID, model.AnswerNG).
		Count(&result.NG).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
