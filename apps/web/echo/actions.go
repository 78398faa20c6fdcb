package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/ai"
	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/drive"
	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
)

func registerActions(g *echo.Group, s *server) {
	g.POST("/teacher/classes", handle(createClass), s.authorize(route.TeacherClasses))
	g.POST("/student/classes", handle(joinClass), s.authorize(route.StudentClasses))
	g.DELETE("/teacher/classes/:classId", handle(deleteClass), s.authorize(route.TeacherClassDetail))
	g.DELETE("/teacher/classes/:classId/students/:studentId", handle(removeStudent), s.authorize(route.TeacherClassDetail))
	g.POST("/teacher/classes/:classId/announcements", handle(announce), s.authorize(route.TeacherClassDetail))

	g.POST("/teacher/assignments", handle(createAssignment), s.authorize(route.TeacherAssignments))
	g.POST("/student/assignments/:assignmentId/submissions", handle(submit), s.authorize(route.StudentAssignments))
	g.PUT("/teacher/grading/:submissionId", handle(grade), s.authorize(route.TeacherGrading))

	g.POST("/teacher/ai-assistant", handle(askAI), s.authorize(route.TeacherAIAssistant))
	g.POST("/student/ai-tutor", handle(askAI), s.authorize(route.StudentAITutor))

	g.POST("/files", handle(upload), s.authorize(route.Files))
	g.DELETE("/files/:fileId", handle(deleteFile), s.authorize(route.Files))
	g.POST("/files/folders", handle(createFolder), s.authorize(route.Files))
	g.DELETE("/files/folders/:folderId", handle(deleteFolder), s.authorize(route.Files))

	g.POST("/chat", handle(sendMessage), s.authorize(route.Chat))
	g.POST("/chat/messages/:localId/resend", handle(resendMessage), s.authorize(route.Chat))
	g.DELETE("/chat/messages/:localId", handle(discardMessage), s.authorize(route.Chat))

	g.PUT("/notifications/read-all", handle(readAllNotifications), s.authorize(route.Notifications))
	g.PUT("/notifications/:notificationId/read", handle(readNotification), s.authorize(route.Notifications))

	g.PUT("/settings", handle(updateProfile), s.authorize(route.Settings))
}

func createClass(ctx echo.Context, v *views) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	c, err := v.classes.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Class created! Code: " + c.Code)
	return render(ctx, http.StatusCreated, c)
}

type joinRequest struct {
	Code string `json:"class_code"`
}

func joinClass(ctx echo.Context, v *views) error {
	var data joinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to joinRequest")
	}
	res, err := v.classes.Join(ctx.Request().Context(), data.Code)
	if err != nil {
		return err
	}
	v.flash.Success("Joined " + res.ClassName)
	return render(ctx, http.StatusOK, res)
}

func deleteClass(ctx echo.Context, v *views) error {
	if err := v.classes.Delete(ctx.Request().Context(), ctx.Param("classId")); err != nil {
		return err
	}
	v.flash.Success("Class deleted")
	return render(ctx, http.StatusOK, nil)
}

func removeStudent(ctx echo.Context, v *views) error {
	if err := v.classes.RemoveStudent(ctx.Request().Context(), ctx.Param("classId"), ctx.Param("studentId")); err != nil {
		return err
	}
	v.flash.Success("Student removed")
	return render(ctx, http.StatusOK, nil)
}

func announce(ctx echo.Context, v *views) error {
	var data class.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	data.ClassID = ctx.Param("classId")
	ann, err := v.classes.Announce(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Announcement posted")
	return render(ctx, http.StatusCreated, ann)
}

func createAssignment(ctx echo.Context, v *views) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	a, err := v.assignments.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Assignment created")
	return render(ctx, http.StatusCreated, a)
}

func submit(ctx echo.Context, v *views) error {
	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	data.AssignmentID = ctx.Param("assignmentId")
	sub, err := v.assignments.Submit(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Assignment submitted!")
	return render(ctx, http.StatusCreated, sub)
}

type gradeRequest struct {
	Grade     int    `json:"grade"`
	Remarks   string `json:"remarks"`
	MaxPoints int    `json:"max_points"`
}

func grade(ctx echo.Context, v *views) error {
	var data gradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to gradeRequest")
	}
	in := assignment.GradeInput{SubmissionID: ctx.Param("submissionId"), Grade: data.Grade, Remarks: data.Remarks}
	sub, err := v.assignments.Grade(ctx.Request().Context(), in, data.MaxPoints)
	if err != nil {
		return err
	}
	v.flash.Success("Grade submitted!")
	return render(ctx, http.StatusOK, sub)
}

type aiRequest struct {
	ai.Request
	Tool string `json:"tool"`
}

// askAI runs one of the AI tools. Teachers also get the assignment and remediation helpers.
func askAI(ctx echo.Context, v *views) error {
	var data aiRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to aiRequest")
	}
	tool := core.CleanString(data.Tool, true /* lower */)
	if tool == "" {
		tool = ai.ToolChat
	}
	if v.user().IsTeacher() {
		switch tool {
		case "assignment":
			tool, data.Prompt = ai.ToolChat, ai.AssignmentPrompt(data.Prompt)
		case "remediation":
			tool, data.Prompt = ai.ToolChat, ai.RemediationPrompt(data.Prompt)
		}
	}

	reply, err := v.ai.Run(ctx.Request().Context(), tool, data.Request)
	if err != nil {
		if errors.Is(err, ai.ErrUnknownTool) {
			return core.NewValidationError(nil, core.FieldError{Field: "tool", Error: "unknown tool " + tool})
		}
		return err
	}
	return render(ctx, http.StatusOK, reply)
}

func upload(ctx echo.Context, v *views) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	file, err := v.drive.Upload(ctx.Request().Context(), drive.NewUpload{
		Filename: fh.Filename,
		Content:  f,
		FolderID: ctx.FormValue("folder_id"),
		ClassID:  ctx.FormValue("class_id"),
	})
	if err != nil {
		return err
	}
	v.flash.Success("Uploaded " + file.Filename)
	return render(ctx, http.StatusCreated, file)
}

func deleteFile(ctx echo.Context, v *views) error {
	if err := v.drive.DeleteFile(ctx.Request().Context(), ctx.Param("fileId")); err != nil {
		return err
	}
	v.flash.Success("File deleted")
	return render(ctx, http.StatusOK, nil)
}

func createFolder(ctx echo.Context, v *views) error {
	var data drive.NewFolder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFolder")
	}
	folder, err := v.drive.CreateFolder(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	v.flash.Success("Folder created")
	return render(ctx, http.StatusCreated, folder)
}

func deleteFolder(ctx echo.Context, v *views) error {
	if err := v.drive.DeleteFolder(ctx.Request().Context(), ctx.Param("folderId")); err != nil {
		return err
	}
	v.flash.Success("Folder deleted")
	return render(ctx, http.StatusOK, nil)
}

// sendMessage returns the reconciled thread entry: committed, or failed with the reason.
// Failed entries stay in the thread until resent or discarded.
func sendMessage(ctx echo.Context, v *views) error {
	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	entry, err := v.threads().Of(chat.FilterOf(data)).Send(ctx.Request().Context(), data)
	return renderEntry(ctx, v, entry, err)
}

func resendMessage(ctx echo.Context, v *views) error {
	localID := ctx.Param("localId")
	thread, err := v.threads().Find(localID)
	if err != nil {
		return errHttpNotFound
	}
	entry, err := thread.Resend(ctx.Request().Context(), localID)
	if errors.Is(err, chat.ErrUnknownEntry) {
		return errHttpNotFound
	}
	return renderEntry(ctx, v, entry, err)
}

func discardMessage(ctx echo.Context, v *views) error {
	localID := ctx.Param("localId")
	thread, err := v.threads().Find(localID)
	if err != nil {
		return errHttpNotFound
	}
	if err := thread.Discard(localID); err != nil {
		return errHttpNotFound
	}
	return render(ctx, http.StatusOK, nil)
}

// renderEntry renders the outcome of a delivery. Entries that never made it into the thread
// (invalid message) and rejected credentials are plain errors.
func renderEntry(ctx echo.Context, v *views, entry chat.Entry, err error) error {
	if err == nil {
		return render(ctx, http.StatusCreated, entry)
	}
	var herr *backend.HTTPError
	if entry.LocalID == "" || (errors.As(err, &herr) && herr.Code == http.StatusUnauthorized) {
		return err
	}
	v.flash.Error("Message not sent: " + backend.Message(err))
	return render(ctx, http.StatusOK, entry)
}

func readNotification(ctx echo.Context, v *views) error {
	if err := v.notifications.MarkRead(ctx.Request().Context(), ctx.Param("notificationId")); err != nil {
		return err
	}
	return render(ctx, http.StatusOK, nil)
}

func readAllNotifications(ctx echo.Context, v *views) error {
	if err := v.notifications.MarkAllRead(ctx.Request().Context()); err != nil {
		return err
	}
	v.flash.Success("All notifications marked as read")
	return render(ctx, http.StatusOK, nil)
}

func updateProfile(ctx echo.Context, v *views) error {
	var data session.ProfileUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileUpdate")
	}
	rctx := ctx.Request().Context()
	saved, err := v.profiles.Update(rctx, data)
	if err != nil {
		return err
	}
	usr, err := v.mgr.UpdateUser(rctx, session.ProfileUpdate{Name: &saved.Name, Avatar: &saved.Avatar})
	if err != nil {
		return errors.Wrap(err, "updating session user")
	}
	v.flash.Success("Profile updated")
	return render(ctx, http.StatusOK, usr)
}
